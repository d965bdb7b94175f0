// Package mail は検証メールの送信を提供する。
// 送信にはResend APIを使用する。APIキーが未設定の開発環境では
// 実送信せずログ出力のみ行う。
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Notifier は検証メール送信のインターフェース。
type Notifier interface {
	// Send は検証トークン付きのメールをemail宛に送信する。
	Send(ctx context.Context, email, token string) error
}

// Config はResendMailerの設定。
type Config struct {
	APIKey  string // Resend APIキー。空の場合はdevモードになる
	From    string // 送信元メールアドレス
	BaseURL string // 検証リンクのベースURL
	DevMode bool   // trueの場合は実送信せずログのみ
}

// ResendMailer はResend APIを使用した検証メール送信の実装。
type ResendMailer struct {
	client *resend.Client
	logger *slog.Logger
	config Config
}

// NewResendMailer はResendMailerを生成する。
// APIキーが空の場合はdevモードとして扱い、クライアントを生成しない。
func NewResendMailer(config Config, logger *slog.Logger) *ResendMailer {
	var client *resend.Client
	if config.APIKey != "" && !config.DevMode {
		client = resend.NewClient(config.APIKey)
	}

	return &ResendMailer{
		client: client,
		logger: logger,
		config: config,
	}
}

// Send は検証トークン付きのメールをemail宛に送信する。
// devモードでは送信内容をログに出力して成功扱いとする。
func (m *ResendMailer) Send(ctx context.Context, email, token string) error {
	verifyURL := fmt.Sprintf("%s/users/email-verify?signupVerifyToken=%s", m.config.BaseURL, token)
	subject := "メールアドレスの確認"
	body := fmt.Sprintf(
		"ご登録ありがとうございます。\n\n以下のリンクを開いてメールアドレスを確認してください。\n\n%s\n\n心当たりのない場合はこのメールを破棄してください。\n",
		verifyURL,
	)

	if m.client == nil {
		m.logger.Info("verification mail (dev mode)",
			slog.String("to", email),
			slog.String("verify_url", verifyURL),
		)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    m.config.From,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		m.logger.Error("検証メールの送信に失敗しました",
			slog.String("to", email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send verification mail: %w", err)
	}

	m.logger.Info("verification mail sent",
		slog.String("to", email),
	)
	return nil
}

// compile-time interface check
var _ Notifier = (*ResendMailer)(nil)
