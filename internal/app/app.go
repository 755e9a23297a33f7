package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/skillmap/internal/auth"
	"github.com/hitoshi/skillmap/internal/config"
	"github.com/hitoshi/skillmap/internal/database"
	"github.com/hitoshi/skillmap/internal/export"
	"github.com/hitoshi/skillmap/internal/generator"
	"github.com/hitoshi/skillmap/internal/handler"
	"github.com/hitoshi/skillmap/internal/logger"
	"github.com/hitoshi/skillmap/internal/metrics"
	"github.com/hitoshi/skillmap/internal/middleware"
	"github.com/hitoshi/skillmap/internal/repository"
	"github.com/hitoshi/skillmap/internal/security"
	"github.com/hitoshi/skillmap/internal/skillmap"
	"github.com/hitoshi/skillmap/internal/user"
	"github.com/hitoshi/skillmap/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 設定を読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 設定ファイルと環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. LOG_LEVELを反映する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	if cmd == CommandHelp {
		_, err := io.WriteString(w, Usage)
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、到達できることを確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL, database.DefaultPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	router, closeRouter, err := buildRouter(context.Background(), cfg, db)
	if err != nil {
		return err
	}
	defer closeRouter()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerateTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// buildRouter は全依存関係をワイヤリングしたルーターを構築する。
// 返り値のcloseはレートリミッターの掃除goroutineを止める。
func buildRouter(ctx context.Context, cfg *config.Config, db *sql.DB) (http.Handler, func(), error) {
	// 1. リポジトリ
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	skillMapRepo := repository.NewPostgresSkillMapRepo(db)

	// 2. 横断的なサービス
	sanitizer := security.NewTextSanitizer()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. ドメインサービス
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, identRepo, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)
	userService := user.NewService(userRepo, sessionRepo)
	skillMapService := skillmap.NewService(skillMapRepo, sanitizer, collector)

	backend, err := generator.NewGenAIBackend(ctx, generator.BackendConfig{
		Project:  cfg.GoogleCloudProject,
		Location: cfg.VertexAILocation,
		Model:    cfg.VertexAIModel,
		APIKey:   cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create generator backend: %w", err)
	}
	gen := generator.NewClient(backend, sanitizer, collector, slog.Default(), cfg.GenerateTimeout)

	renderer, err := newRenderer(cfg)
	if err != nil {
		return nil, nil, err
	}

	// 4. ルーター
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralPerMinute:  cfg.RateLimitGeneral,
		GeneratePerMinute: cfg.RateLimitGenerate,
		CleanupInterval:   middleware.DefaultRateLimiterConfig().CleanupInterval,
	})

	deps := &handler.RouterDeps{
		SessionFinder:      sessionRepo,
		CORSAllowedOrigins: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter:    rateLimiter,
		Logger:         slog.Default(),
		Metrics:        collector,
		MetricsHandler: metrics.Handler(reg),
		HealthChecker:  database.NewHealthChecker(db),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		SkillMapService: skillMapService,
		Renderer:        renderer,
		Generator:       gen,

		UserService: userService,
	}

	return handler.NewRouter(deps), rateLimiter.Stop, nil
}

// newRenderer はPNGエクスポート用のRendererを生成する。
// EXPORT_FONT_PATHが空の場合は組み込みフォントを使う。
func newRenderer(cfg *config.Config) (*export.Renderer, error) {
	var fontTTF []byte
	if cfg.ExportFontPath != "" {
		b, err := os.ReadFile(cfg.ExportFontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read export font: %w", err)
		}
		fontTTF = b
	}

	renderer, err := export.NewRenderer(cfg.ExportWidth, cfg.ExportHeight, fontTTF)
	if err != nil {
		return nil, fmt.Errorf("failed to create export renderer: %w", err)
	}
	return renderer, nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションを定期的に削除し、SIGINTまたはSIGTERMシグナルを受信すると停止する。
func runWorker(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	sessionRepo := repository.NewPostgresSessionRepo(db)
	cleanupJob := cleanup.NewCleanupJob(sessionRepo, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("session_cleanup_interval", cfg.SessionCleanupInterval),
	)

	cleanupJob.Start(ctx, cfg.SessionCleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
