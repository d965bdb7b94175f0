// Package handler はHTTP APIハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/accountd/internal/middleware"
	"github.com/hitoshi/accountd/internal/model"
)

// AccountServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Register は新規ユーザーを登録し、検証メールの送信を予約する。
	Register(ctx context.Context, name, email, password string) error
	// VerifyEmail は検証トークンを消費し、セッショントークンを返す。
	VerifyEmail(ctx context.Context, token string) (string, error)
	// Login は資格情報を検証し、セッショントークンを返す。
	Login(ctx context.Context, email, password string) (string, error)
	// GetUserInfo はユーザーのプロフィールビューを返す。
	GetUserInfo(ctx context.Context, userID int64) (*model.UserInfo, error)
}

// UserHandler はユーザー登録・認証のHTTPハンドラー。
type UserHandler struct {
	service AccountServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service AccountServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// createUserRequest はユーザー登録リクエストのボディ。
type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse はセッショントークンを返すAPIレスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// userInfoResponse はユーザー情報のAPIレスポンス。
type userInfoResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateUser はユーザー登録を処理する。
// POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if reason := validateCreateUserRequest(&req); reason != "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(reason))
		return
	}

	if err := h.service.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// VerifyEmail はメールアドレス検証を処理する。
// POST /users/email-verify?signupVerifyToken=...
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("signupVerifyToken")
	if token == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("signupVerifyTokenが空です"))
		return
	}

	sessionToken, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{Token: sessionToken})
}

// Login はログインを処理する。
// POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("メールアドレスとパスワードは必須です"))
		return
	}

	sessionToken, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{Token: sessionToken})
}

// GetUserInfo はユーザー情報を取得する。
// GET /users/:id
func (h *UserHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ユーザーIDは数値で指定してください"))
		return
	}

	info, err := h.service.GetUserInfo(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userInfoResponse{
		ID:    info.ID,
		Name:  info.Name,
		Email: info.Email,
	})
}

// --- ヘルパー関数 ---

// validateCreateUserRequest はユーザー登録リクエストを検証し、
// 不正な場合は理由を返す。正常な場合は空文字列を返す。
func validateCreateUserRequest(req *createUserRequest) string {
	if req.Name == "" {
		return "名前は必須です"
	}
	if len(req.Name) > model.MaxNameLength {
		return "名前が長すぎます"
	}
	if req.Email == "" {
		return "メールアドレスは必須です"
	}
	if len(req.Email) > model.MaxEmailLength {
		return "メールアドレスが長すぎます"
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email || strings.ContainsAny(req.Email, " \t") {
		return "メールアドレスの形式が不正です"
	}
	if len(req.Password) < model.MinPasswordLength {
		return "パスワードが短すぎます"
	}
	if len(req.Password) > model.MaxPasswordLength {
		return "パスワードが長すぎます"
	}
	return ""
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeDuplicateEmail:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidToken:
		return http.StatusNotFound
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
