package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/miniblog/internal/metrics"
	"github.com/hitoshi/miniblog/internal/middleware"
)

// Pinger はデータストアの疎通確認インターフェース。
// sql.DBの部分集合として定義する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
// 起動時に一度構築し、各コンポーネントへ明示的に注入する。
type RouterDeps struct {
	// ミドルウェア依存
	Resolver    middleware.IdentityResolver
	RateLimiter *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	Cookie      CookieConfig

	// 記事
	BlogService BlogServiceInterface

	// 運用
	DB       Pinger
	Metrics  middleware.HTTPMetricsRecorder // nilの場合は記録しない
	Gatherer prometheus.Gatherer            // nilの場合は/metricsを公開しない
	Logger   *slog.Logger
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Metrics → Identity → Logging → RateLimit(General)
//
// Identityは全ルートで解決し（失敗は匿名扱い）、保護ルートのみRequireUserで遮断する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	views := NewViews(deps.Logger)
	authHandler := NewAuthHandler(deps.AuthService, deps.Cookie, views, deps.Logger)
	blogHandler := NewBlogHandler(deps.BlogService, views, deps.Logger)

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewIdentityMiddleware(deps.Resolver, deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(deps.RateLimiter.GeneralMiddleware())

	// --- 運用エンドポイント ---

	r.Get("/health", healthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証フロー ---
	// POSTは総当たり対策として専用のレート制限を重ねる

	r.Get("/register", authHandler.ShowRegister)
	r.With(deps.RateLimiter.AuthMiddleware()).Post("/register", authHandler.Register)
	r.Get("/login", authHandler.ShowLogin)
	r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	// --- 記事 ---

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/blogs", http.StatusSeeOther)
	})

	r.Route("/blogs", func(r chi.Router) {
		r.Get("/", blogHandler.List)

		// 投稿は認証必須
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/create", blogHandler.ShowCreate)
			r.Post("/create", blogHandler.Create)
		})

		r.Get("/{id}", blogHandler.Detail)
	})

	// 未定義ルートは404フォールバックページ
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		views.RenderNotFound(w, middleware.IdentityFromContext(r.Context()).User)
	})

	return r
}

// healthHandler はデータストアの疎通を確認するヘルスチェックハンドラーを返す。
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status = "unavailable"
				statusCode = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
