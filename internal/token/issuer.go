// Package token はメール検証用のワンタイムトークン発行を提供する。
package token

import (
	"fmt"

	"github.com/google/uuid"
)

// Issuer は衝突耐性のある検証トークンを発行する。
type Issuer struct{}

// NewIssuer はIssuerを生成する。
func NewIssuer() *Issuer {
	return &Issuer{}
}

// Issue は検証トークンを1つ発行する。
// 時刻順序を持つUUID（v1）を使用し、ノード情報が取得できない環境では
// ランダムUUID（v4）にフォールバックする。一意性はDBのUNIQUE制約が
// 最終的に保証する。
func (i *Issuer) Issue() (string, error) {
	u, err := uuid.NewUUID()
	if err != nil {
		u, err = uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("failed to generate verification token: %w", err)
		}
	}
	return u.String(), nil
}
