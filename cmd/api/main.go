// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pressly/goose/v3"

	"github.com/angelamos/casefile/internal/admin"
	"github.com/angelamos/casefile/internal/auth"
	"github.com/angelamos/casefile/internal/cases"
	"github.com/angelamos/casefile/internal/config"
	"github.com/angelamos/casefile/internal/contact"
	"github.com/angelamos/casefile/internal/core"
	"github.com/angelamos/casefile/internal/document"
	"github.com/angelamos/casefile/internal/email"
	"github.com/angelamos/casefile/internal/health"
	"github.com/angelamos/casefile/internal/middleware"
	"github.com/angelamos/casefile/internal/migrations"
	"github.com/angelamos/casefile/internal/ratelimit"
	"github.com/angelamos/casefile/internal/server"
	"github.com/angelamos/casefile/internal/tag"
	"github.com/angelamos/casefile/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := runMigrations(ctx, db); err != nil {
		return err
	}
	logger.Info("database migrations applied")

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	storage, err := document.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("object storage configured",
		"bucket", cfg.Storage.Bucket,
		"region", cfg.Storage.Region,
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, userSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	caseRepo := cases.NewRepository(db.DB)
	caseSvc := cases.NewService(caseRepo)
	caseHandler := cases.NewHandler(caseSvc)

	contactRepo := contact.NewRepository(db.DB)
	contactSvc := contact.NewService(contactRepo)
	contactHandler := contact.NewHandler(contactSvc)

	documentRepo := document.NewRepository(db.DB)
	documentSvc := document.NewService(documentRepo, storage, logger)
	documentHandler := document.NewHandler(documentSvc)

	oauthProvider := email.NewGoogleProvider(cfg.OAuth)
	emailRepo := email.NewRepository(db.DB)
	emailSvc := email.NewService(
		emailRepo, oauthProvider, redis.Client, cfg.OAuth.StateTTL, logger)
	emailHandler := email.NewHandler(emailSvc)

	tagRepo := tag.NewRepository(db.DB)
	tagSvc := tag.NewService(tagRepo, map[string]tag.Taggable{
		"cases":     caseRepo,
		"contacts":  contactRepo,
		"documents": documentRepo,
	})
	tagHandler := tag.NewHandler(tagSvc)

	healthHandler := health.NewHandler(
		health.Check{Name: "database", Checker: db},
		health.Check{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:      db.Stats,
		RedisStats:   redis.PoolStats,
		DBPing:       db.Ping,
		RedisPing:    redis.Ping,
		EntityCounts: entityCounter(db),
		Sweeper:      authSvc,
	})

	loginLimiter := ratelimit.NewRegistry(
		cfg.RateLimit.LoginRequests,
		cfg.RateLimit.LoginWindow,
	)
	refreshLimiter := ratelimit.NewRegistry(
		cfg.RateLimit.RefreshRequests,
		cfg.RateLimit.RefreshWindow,
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager, authSvc)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginLimiter, refreshLimiter)
		emailHandler.RegisterCallbackRoute(r)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			userHandler.RegisterRoutes(r)
			caseHandler.RegisterRoutes(r)
			contactHandler.RegisterRoutes(r)
			documentHandler.RegisterRoutes(r)
			emailHandler.RegisterRoutes(r)
			tagHandler.RegisterRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticator)
			r.Use(adminOnly)

			userHandler.RegisterAdminRoutes(r)
			adminHandler.RegisterRoutes(r)
		})
	})

	sweeper := auth.NewSweeper(authSvc, cfg.JWT.SweepInterval, logger)
	go sweeper.Run(ctx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func runMigrations(ctx context.Context, db *core.Database) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB.DB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func entityCounter(
	db *core.Database,
) func(ctx context.Context) (*admin.EntityCounts, error) {
	return func(ctx context.Context) (*admin.EntityCounts, error) {
		query := `
			SELECT
				(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL) AS users,
				(SELECT COUNT(*) FROM cases) AS cases,
				(SELECT COUNT(*) FROM contacts) AS contacts,
				(SELECT COUNT(*) FROM documents) AS documents`

		var counts admin.EntityCounts
		if err := db.DB.GetContext(ctx, &counts, query); err != nil {
			return nil, fmt.Errorf("count entities: %w", err)
		}

		return &counts, nil
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
