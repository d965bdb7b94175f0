// Package model はドメインモデルを定義する。
package model

import "time"

// フィールド長の制約。DBスキーマのVARCHAR長と一致させる。
const (
	MaxNameLength     = 30
	MaxEmailLength    = 60
	MaxPasswordLength = 30
	MinPasswordLength = 8
)

// User はサービス利用ユーザーを表す。
// SignupVerifyTokenは登録時に1回だけ発行され、メール検証の成功時に
// 消費される（NULLになる）。Verifiedは検証済み状態を明示的に保持する。
type User struct {
	ID                int64
	Name              string
	Email             string
	PasswordHash      string
	SignupVerifyToken *string
	Verified          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserInfo はプロフィール参照APIのビュー。
// パスワード関連のフィールドは一切含めない。
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
