package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/accountd/internal/model"
)

// uniqueViolation はPostgreSQLの一意性制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, name, email, password_hash, signup_verify_token, verified, created_at, updated_at`

// scanUser は1行をmodel.Userに読み取る。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.SignupVerifyToken, &user.Verified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindBySignupToken は検証トークンで未検証ユーザーを検索する。
// 見つからない場合（消費済みトークンを含む）はnilを返す。
func (r *PostgresUserRepo) FindBySignupToken(ctx context.Context, token string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE signup_verify_token = $1`,
		token,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by signup token: %w", err)
	}
	return user, nil
}

// Create はユーザーをトランザクション内で作成する。
// 採番されたIDとタイムスタンプをuserに書き戻す。
// emailのUNIQUE制約違反はDUPLICATE_EMAILエラーとして返す。
// 事前の存在チェックは競合に対して安全でないため、正しさは
// この制約違反マッピングが保証する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, signup_verify_token, verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, false, now(), now())
		 RETURNING id, created_at, updated_at`,
		user.Name, user.Email, user.PasswordHash, user.SignupVerifyToken,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateEmailError()
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ConsumeSignupToken は検証トークンを1回限りで消費する。
// verified更新とトークンのNULL化を単一UPDATEで行うため、同じトークンでの
// 2回目の呼び出しは必ず0行更新となりnilを返す。
func (r *PostgresUserRepo) ConsumeSignupToken(ctx context.Context, token string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET verified = true, signup_verify_token = NULL, updated_at = now()
		 WHERE signup_verify_token = $1
		 RETURNING `+userColumns,
		token,
	).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.SignupVerifyToken, &user.Verified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume signup token: %w", err)
	}
	return user, nil
}

// DeleteUnverifiedBefore は保持期間を超過した未検証ユーザーを削除する。
func (r *PostgresUserRepo) DeleteUnverifiedBefore(ctx context.Context, retentionDays int) (int64, error) {
	interval := fmt.Sprintf("%d days", retentionDays)
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE verified = false AND created_at < now() - $1::interval`,
		interval,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unverified users: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// isUniqueViolation はPostgreSQLの一意性制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
