package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/accountd/internal/session"
)

// mockSessionVerifier はSessionVerifierのテスト用モック。
type mockSessionVerifier struct {
	verifyFn func(tokenString string) (*session.Claims, error)
}

func (m *mockSessionVerifier) Verify(tokenString string) (*session.Claims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(tokenString)
	}
	return nil, errors.New("not implemented")
}

// TestAuthMiddleware_ValidToken は有効なBearerトークンでユーザーIDが
// コンテキストに注入されることを検証する。
func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &mockSessionVerifier{
		verifyFn: func(tokenString string) (*session.Claims, error) {
			if tokenString != "valid-token" {
				t.Errorf("token = %q, want %q", tokenString, "valid-token")
			}
			return &session.Claims{UserID: "42", Name: "Ann", Email: "ann@example.com"}, nil
		},
	}

	var capturedUserID string
	handler := NewAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		capturedUserID = userID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if capturedUserID != "42" {
		t.Errorf("userID = %q, want %q", capturedUserID, "42")
	}
}

// TestAuthMiddleware_MissingHeader はAuthorizationヘッダーが無い場合に401が返ることを検証する。
func TestAuthMiddleware_MissingHeader(t *testing.T) {
	verifier := &mockSessionVerifier{
		verifyFn: func(tokenString string) (*session.Claims, error) {
			t.Error("Verify must not be called without a bearer token")
			return nil, errors.New("unexpected")
		},
	}

	handler := NewAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != "UNAUTHORIZED" {
		t.Errorf("code = %q, want %q", body.Code, "UNAUTHORIZED")
	}
}

// TestAuthMiddleware_InvalidToken はトークン検証失敗時に401が返ることを検証する。
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := &mockSessionVerifier{
		verifyFn: func(tokenString string) (*session.Claims, error) {
			return nil, errors.New("token is expired")
		},
	}

	handler := NewAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestAuthMiddleware_MalformedHeader はBearerスキーム以外のヘッダーが拒否されることを検証する。
func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"BasicScheme", "Basic dXNlcjpwYXNz"},
		{"NoScheme", "just-a-token"},
		{"EmptyBearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockSessionVerifier{
				verifyFn: func(tokenString string) (*session.Claims, error) {
					return nil, errors.New("invalid token")
				},
			}

			handler := NewAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler must not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Result().StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
			}
		})
	}
}

// TestUserIDFromContext_NotSet はユーザーID未設定のコンテキストでエラーになることを検証する。
func TestUserIDFromContext_NotSet(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for context without user ID")
	}
}

// TestContextWithUserID はContextWithUserIDで注入した値が取り出せることを検証する。
func TestContextWithUserID(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-7")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext returned error: %v", err)
	}
	if userID != "user-7" {
		t.Errorf("userID = %q, want %q", userID, "user-7")
	}
}
