package token

import (
	"testing"
)

// TestIssue_ReturnsNonEmptyToken はトークンが空でないことを検証する。
func TestIssue_ReturnsNonEmptyToken(t *testing.T) {
	issuer := NewIssuer()

	tok, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if tok == "" {
		t.Fatal("expected non-empty token")
	}
}

// TestIssue_TokensArePairwiseDistinct は連続発行したトークンが
// すべて互いに異なることを検証する。
func TestIssue_TokensArePairwiseDistinct(t *testing.T) {
	issuer := NewIssuer()

	const n = 1000
	seen := make(map[string]struct{}, n)

	for i := 0; i < n; i++ {
		tok, err := issuer.Issue()
		if err != nil {
			t.Fatalf("Issue returned error at iteration %d: %v", i, err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token issued: %s", tok)
		}
		seen[tok] = struct{}{}
	}
}

// TestIssue_TokenFitsSchemaLength はトークンがDBカラム長（60）に収まることを検証する。
func TestIssue_TokenFitsSchemaLength(t *testing.T) {
	issuer := NewIssuer()

	tok, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if len(tok) > 60 {
		t.Errorf("token length = %d, want <= 60", len(tok))
	}
}
