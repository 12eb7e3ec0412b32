// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/carterperez-dev/templates/dice-roller/internal/admin"
	"github.com/carterperez-dev/templates/dice-roller/internal/auth"
	"github.com/carterperez-dev/templates/dice-roller/internal/config"
	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/guest"
	"github.com/carterperez-dev/templates/dice-roller/internal/health"
	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
	"github.com/carterperez-dev/templates/dice-roller/internal/roll"
	"github.com/carterperez-dev/templates/dice-roller/internal/server"
	"github.com/carterperez-dev/templates/dice-roller/internal/session"
	"github.com/carterperez-dev/templates/dice-roller/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to an optional yaml config file")
	generateKey := flag.String("generate-key", "", "write a new ES256 signing key to this path and exit")
	flag.Parse()

	if *generateKey != "" {
		if err := auth.GenerateKeyPair(*generateKey); err != nil {
			slog.Error("generate key", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}

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

	if cfg.Sentry.DSN != "" {
		if sentryErr := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.App.Environment,
			Release:          cfg.App.Version,
			EnableTracing:    true,
			TracesSampleRate: cfg.Sentry.SampleRate,
		}); sentryErr != nil {
			logger.Warn("failed to initialize sentry", "error", sentryErr)
		} else {
			defer sentry.Flush(2 * time.Second)
			logger.Info("sentry initialized")
		}
	}

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
		telemetry = &core.Telemetry{}
	}
	if telemetry.Enabled() {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected", "driver", db.Driver)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close() //nolint:errcheck // startup failure cleanup
		return err
	}
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	var (
		jwtManager *auth.JWTManager
		verifier   middleware.TokenVerifier
	)
	if cfg.JWT.Enabled {
		jwtManager, err = auth.NewJWTManager(cfg.JWT)
		if err != nil {
			return fmt.Errorf("init jwt: %w", err)
		}
		verifier = jwtManager
		logger.Info("JWT manager initialized",
			"algorithm", "ES256",
			"key_id", jwtManager.KeyID(),
		)
	}

	sessions := session.NewManager(session.NewRedisStore(redis.Client), cfg.Session)

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc, sessions)

	authSvc := auth.NewService(userSvc, jwtManager)
	authHandler := auth.NewHandler(authSvc, sessions)

	guestSvc := guest.NewService(guest.NewRepository(db.DB))
	binder := guest.NewBinder(guestSvc, sessions)
	guestHandler := guest.NewHandler(guestSvc, binder)

	rollSvc := roll.NewService(db.DB, roll.NewEngine(nil))
	rollHandler := roll.NewHandler(rollSvc, binder, cfg.App.PublicURL)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Guests:     guestSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	if cfg.Sentry.DSN != "" {
		srv.Wrap(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.Every(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen:   true,
			BypassFunc: isProbe,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if jwtManager != nil {
		router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.Identify(sessions, verifier))

		r.Route("/auth", func(r chi.Router) {
			authHandler.RegisterRoutes(r)
			guestHandler.RegisterRoutes(r)
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.TieredRateLimiter(redis.Client, middleware.DefaultTiers))

			rollHandler.RegisterRoutes(r)
			userHandler.RegisterRoutes(r)
		})

		rollHandler.RegisterShareRoutes(r)
	})

	if cfg.Admin.Token != "" {
		router.Route("/admin", func(r chi.Router) {
			adminHandler.RegisterRoutes(r, middleware.RequireAdminToken(cfg.Admin.Token))
		})
	} else {
		logger.Info("admin routes disabled, ADMIN_TOKEN not set")
	}

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

	if telemetry.Enabled() {
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

func isProbe(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/livez", "/readyz":
		return true
	}
	return false
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
