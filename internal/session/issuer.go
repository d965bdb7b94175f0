// Package session はログインセッショントークン（JWT）の発行と検証を提供する。
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はセッショントークンのクレーム。
// 標準クレームに加えて検証済みユーザーのID・名前・メールアドレスを含む。
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Issuer はHS256署名のセッショントークンを発行・検証する。
type Issuer struct {
	secret []byte
	maxAge time.Duration
}

// NewIssuer はIssuerを生成する。
// secretは署名鍵、maxAgeはトークンの有効期間を指定する。
func NewIssuer(secret []byte, maxAge time.Duration) *Issuer {
	return &Issuer{
		secret: secret,
		maxAge: maxAge,
	}
}

// Issue は認証済みユーザーのセッショントークンを発行する。
func (i *Issuer) Issue(userID, name, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.maxAge)),
		},
		UserID: userID,
		Name:   name,
		Email:  email,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Verify はセッショントークンを検証し、クレームを返す。
// 署名不正・期限切れ・フォーマット不正はすべてエラーになる。
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}
