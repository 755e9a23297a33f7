package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/skillmap/internal/metrics"
	"github.com/hitoshi/skillmap/internal/middleware"
)

// HealthChecker は/healthが確認する依存先。
type HealthChecker interface {
	Check(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder      middleware.SessionFinder
	CORSAllowedOrigins string // カンマ区切り
	CSRFConfig         middleware.CSRFConfig
	RateLimiter        *middleware.RateLimiter
	Logger             *slog.Logger
	Metrics            metrics.MetricsCollector
	MetricsHandler     http.Handler // nilの場合は/metricsを公開しない
	HealthChecker      HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// スキルマップ
	SkillMapService SkillMapServiceInterface
	Renderer        MapRenderer
	Generator       GeneratorInterface

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → SecurityHeaders → CORS
//	  → (認証が必要なルートのみ) Session → CSRF → RateLimit(General)
//
// /health、/metrics、認証ルート（/auth/*）、/api/csrf-tokenはセッション不要。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	mapHandler := NewSkillMapHandler(deps.SkillMapService, deps.Renderer)
	generateHandler := NewGenerateHandler(deps.Generator)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 自動生成は専用のレート制限を追加
		r.With(deps.RateLimiter.GenerateMiddleware()).Post("/api/generate-axis", generateHandler.Generate)

		r.Route("/api/skill-maps", func(r chi.Router) {
			r.Get("/", mapHandler.List)
			r.Post("/", mapHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", mapHandler.Get)
				r.Patch("/", mapHandler.Update)
				r.Delete("/", mapHandler.Delete)

				r.Post("/labels", mapHandler.AddLabel)
				r.Route("/labels/{labelID}", func(r chi.Router) {
					r.Patch("/", mapHandler.UpdateLabel)
					r.Delete("/", mapHandler.DeleteLabel)
					r.Post("/move", mapHandler.MoveLabel)
				})

				r.Put("/axes/{axis}/{direction}", mapHandler.SetAxisCaption)
				r.Put("/quadrants/{quadrant}", mapHandler.SetQuadrantLabels)

				r.Get("/layout", mapHandler.Layout)
				r.Get("/export.png", mapHandler.ExportPNG)
			})
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler はDB到達性を返す。checkerがnilの場合はプロセスの生存だけを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Check(r.Context()); err != nil {
				slog.Error("ヘルスチェックに失敗しました", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
