// Package account はアカウント登録・メール検証・ログインのドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/accountd/internal/mail"
	"github.com/hitoshi/accountd/internal/model"
	"github.com/hitoshi/accountd/internal/repository"
)

// TokenIssuer は検証トークン発行のインターフェース。
type TokenIssuer interface {
	Issue() (string, error)
}

// SessionIssuer はセッショントークン発行のインターフェース。
// 検証済みのユーザー識別情報からトークンを生成する。
type SessionIssuer interface {
	Issue(userID, name, email string) (string, error)
}

// MetricsRecorder はアカウント操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordSignupSuccess()
	RecordSignupFailure()
	RecordVerifySuccess()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordMailFailure()
}

// Service はアカウントライフサイクルのサービス層。
// 登録・メール検証・ログイン・プロフィール参照を提供する。
type Service struct {
	userRepo      repository.UserRepository
	tokenIssuer   TokenIssuer
	sessionIssuer SessionIssuer
	notifier      mail.Notifier
	metrics       MetricsRecorder
}

// NewService はServiceを生成する。
// metricsはnilを許容する（テストやワーカーでの利用を想定）。
func NewService(
	userRepo repository.UserRepository,
	tokenIssuer TokenIssuer,
	sessionIssuer SessionIssuer,
	notifier mail.Notifier,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		userRepo:      userRepo,
		tokenIssuer:   tokenIssuer,
		sessionIssuer: sessionIssuer,
		notifier:      notifier,
		metrics:       metrics,
	}
}

// Register は新規アカウントを登録し、検証メールを送信する。
//
// 処理順序:
//  1. メールアドレスの事前重複チェック（高速な失敗経路。正しさは保証しない）
//  2. 検証トークンの発行とパスワードのハッシュ化
//  3. トランザクション内でのINSERT。emailのUNIQUE制約違反は
//     DUPLICATE_EMAILとして返る（同時登録の競合はここで決着する）
//  4. コミット成功後にのみ検証メールを送信する
//
// メール送信の失敗は登録を取り消さない。エラーログとメトリクスに記録し、
// 登録自体は成功として扱う。
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	// 1. 事前重複チェック
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.recordSignupFailure()
		return fmt.Errorf("メールアドレスの重複チェックに失敗しました: %w", err)
	}
	if existing != nil {
		s.recordSignupFailure()
		return model.NewDuplicateEmailError()
	}

	// 2. 検証トークンの発行
	verifyToken, err := s.tokenIssuer.Issue()
	if err != nil {
		s.recordSignupFailure()
		return fmt.Errorf("検証トークンの発行に失敗しました: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.recordSignupFailure()
		return fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		SignupVerifyToken: &verifyToken,
	}

	// 3. トランザクション内でのINSERT。失敗時はロールバック済みで返る。
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.recordSignupFailure()
		return err
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
	)
	s.recordSignupSuccess()

	// 4. コミット成功後にのみメール送信。送信失敗は登録を取り消さない。
	if err := s.notifier.Send(ctx, email, verifyToken); err != nil {
		slog.Error("検証メールの送信に失敗しました（登録は完了しています）",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		s.recordMailFailure()
	}

	return nil
}

// VerifyEmail は検証トークンを消費し、セッショントークンを発行する。
// トークンの消費（verified=true化とトークンのNULL化）は単一UPDATEで
// 行われるため、同じトークンでの2回目の呼び出しはINVALID_TOKENになる。
func (s *Service) VerifyEmail(ctx context.Context, verifyToken string) (string, error) {
	user, err := s.userRepo.ConsumeSignupToken(ctx, verifyToken)
	if err != nil {
		return "", fmt.Errorf("検証トークンの消費に失敗しました: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidTokenError()
	}

	sessionToken, err := s.sessionIssuer.Issue(
		strconv.FormatInt(user.ID, 10), user.Name, user.Email,
	)
	if err != nil {
		return "", fmt.Errorf("セッショントークンの発行に失敗しました: %w", err)
	}

	slog.Info("email verified",
		slog.Int64("user_id", user.ID),
	)
	s.recordVerifySuccess()

	return sessionToken, nil
}

// Login はメールアドレスとパスワードを照合し、セッショントークンを発行する。
// ユーザー不在とパスワード不一致は同じUSER_NOT_FOUNDを返し、
// どちらが原因かを外部に漏らさない。検証済みかどうかではゲートしない。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.recordLoginFailure()
		return "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		s.recordLoginFailure()
		return "", model.NewUserNotFoundError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordLoginFailure()
		return "", model.NewUserNotFoundError()
	}

	sessionToken, err := s.sessionIssuer.Issue(
		strconv.FormatInt(user.ID, 10), user.Name, user.Email,
	)
	if err != nil {
		return "", fmt.Errorf("セッショントークンの発行に失敗しました: %w", err)
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
	)
	s.recordLoginSuccess()

	return sessionToken, nil
}

// GetUserInfo は指定IDのユーザーのプロフィールビューを返す。
// パスワード関連フィールドは含めない。
func (s *Service) GetUserInfo(ctx context.Context, userID int64) (*model.UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return &model.UserInfo{
		ID:    strconv.FormatInt(user.ID, 10),
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// メトリクス記録ヘルパー。metricsがnilの場合は何もしない。

func (s *Service) recordSignupSuccess() {
	if s.metrics != nil {
		s.metrics.RecordSignupSuccess()
	}
}

func (s *Service) recordSignupFailure() {
	if s.metrics != nil {
		s.metrics.RecordSignupFailure()
	}
}

func (s *Service) recordVerifySuccess() {
	if s.metrics != nil {
		s.metrics.RecordVerifySuccess()
	}
}

func (s *Service) recordLoginSuccess() {
	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
}

func (s *Service) recordLoginFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}

func (s *Service) recordMailFailure() {
	if s.metrics != nil {
		s.metrics.RecordMailFailure()
	}
}
