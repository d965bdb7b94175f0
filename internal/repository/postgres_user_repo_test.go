package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// 一意性制約違反の判定が正しく動作することを検証
func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "一意性制約違反(23505)はtrue",
			err:  &pq.Error{Code: "23505", Constraint: "users_email_key"},
			want: true,
		},
		{
			name: "%wでラップされた一意性制約違反もtrue",
			err:  fmt.Errorf("failed to insert user: %w", &pq.Error{Code: "23505"}),
			want: true,
		},
		{
			name: "外部キー制約違反(23503)はfalse",
			err:  &pq.Error{Code: "23503"},
			want: false,
		},
		{
			name: "pq以外のエラーはfalse",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "nilはfalse",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
