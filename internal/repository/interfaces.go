// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/accountd/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindBySignupToken は検証トークンで未検証ユーザーを検索する。
	// 見つからない場合（消費済みトークンを含む）はnilを返す。
	FindBySignupToken(ctx context.Context, token string) (*model.User, error)

	// Create はユーザーをトランザクション内で作成し、採番されたIDを
	// user.IDに書き戻す。emailのUNIQUE制約違反はmodel.APIError
	// （DUPLICATE_EMAIL）として返す。失敗時はロールバックされ、
	// 部分的なレコードは残らない。
	Create(ctx context.Context, user *model.User) error

	// ConsumeSignupToken は検証トークンを1回限りで消費する。
	// verified=trueを設定しトークンをNULLにする更新を単一UPDATEで行い、
	// 更新されたユーザーを返す。該当行が無い場合はnilを返す。
	ConsumeSignupToken(ctx context.Context, token string) (*model.User, error)

	// DeleteUnverifiedBefore は指定日数より古い未検証ユーザーを削除し、
	// 削除件数を返す。クリーンアップワーカーから使用する。
	DeleteUnverifiedBefore(ctx context.Context, retentionDays int) (int64, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
