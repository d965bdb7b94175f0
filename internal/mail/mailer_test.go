package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

// TestResendMailer_ImplementsNotifier はNotifierインターフェースを満たすことを検証する。
func TestResendMailer_ImplementsNotifier(t *testing.T) {
	var _ Notifier = (*ResendMailer)(nil)
}

// TestSend_DevMode_LogsInsteadOfSending はAPIキー未設定時に
// 実送信せず検証URLをログに出力することを検証する。
func TestSend_DevMode_LogsInsteadOfSending(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewResendMailer(Config{
		BaseURL: "http://localhost:8080",
	}, newTestLogger(&buf))

	err := mailer.Send(context.Background(), "ann@example.com", "token-123")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ann@example.com") {
		t.Error("expected log to contain recipient address")
	}
	if !strings.Contains(out, "signupVerifyToken=token-123") {
		t.Error("expected log to contain verification URL with token")
	}
}

// TestSend_DevModeFlag_DisablesClient はDevMode=trueの場合に
// APIキーが設定されていても実送信しないことを検証する。
func TestSend_DevModeFlag_DisablesClient(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewResendMailer(Config{
		APIKey:  "re_test_key",
		From:    "noreply@example.com",
		BaseURL: "http://localhost:8080",
		DevMode: true,
	}, newTestLogger(&buf))

	err := mailer.Send(context.Background(), "bob@example.com", "token-456")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "dev mode") {
		t.Error("expected dev mode log output")
	}
}

// TestSend_VerifyURLFormat は検証URLがAPIのエンドポイント形式と一致することを検証する。
func TestSend_VerifyURLFormat(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewResendMailer(Config{
		BaseURL: "https://account.example.com",
	}, newTestLogger(&buf))

	if err := mailer.Send(context.Background(), "c@example.com", "tok"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	want := "https://account.example.com/users/email-verify?signupVerifyToken=tok"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected log to contain %q", want)
	}
}
