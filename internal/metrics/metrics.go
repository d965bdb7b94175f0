// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordSignupSuccess()
	RecordSignupFailure()
	RecordVerifySuccess()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordMailFailure()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signupSuccess  prometheus.Counter
	signupFail     prometheus.Counter
	verifySuccess  prometheus.Counter
	loginSuccess   prometheus.Counter
	loginFail      prometheus.Counter
	mailFail       prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signupSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accountd_signup_total",
			Help: "ユーザー登録成功の合計数",
		}),
		signupFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accountd_signup_fail_total",
			Help: "ユーザー登録失敗の合計数",
		}),
		verifySuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accountd_verify_total",
			Help: "メールアドレス検証成功の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accountd_login_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accountd_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		mailFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accountd_mail_fail_total",
			Help: "検証メール送信失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountd_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "accountd_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signupSuccess,
		c.signupFail,
		c.verifySuccess,
		c.loginSuccess,
		c.loginFail,
		c.mailFail,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordSignupSuccess はユーザー登録成功を記録する。
func (c *Collector) RecordSignupSuccess() {
	c.signupSuccess.Inc()
}

// RecordSignupFailure はユーザー登録失敗を記録する。
func (c *Collector) RecordSignupFailure() {
	c.signupFail.Inc()
}

// RecordVerifySuccess はメールアドレス検証成功を記録する。
func (c *Collector) RecordVerifySuccess() {
	c.verifySuccess.Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordMailFailure は検証メール送信失敗を記録する。
func (c *Collector) RecordMailFailure() {
	c.mailFail.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
