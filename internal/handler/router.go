package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/accountd/internal/metrics"
	"github.com/hitoshi/accountd/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBの部分集合として定義する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionVerifier   middleware.SessionVerifier
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// 監視
	HealthChecker    HealthChecker
	MetricsGatherer  prometheus.Gatherer
	MetricsCollector metrics.MetricsCollector

	// ユーザー
	AccountService AccountServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → LoggingMiddleware → RecoveryMiddleware → MetricsMiddleware
//
// 認証ミドルウェア（Bearerトークン検証）はGET /users/{id}にのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewMetricsMiddleware(deps.MetricsCollector))

	userHandler := NewUserHandler(deps.AccountService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker).ServeHTTP)

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.CreateUser)
		r.Post("/email-verify", userHandler.VerifyEmail)
		r.Post("/login", userHandler.Login)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.SessionVerifier))
			r.Get("/{id}", userHandler.GetUserInfo)
		})
	})

	return r
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
// DB接続の疎通を確認し、200または503を返す。
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// ServeHTTP はヘルスチェックを処理する。
// GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
