// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the MeatTrack HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire stores, services and handlers.
//  7. Seed bootstrap accounts and start the session sweeper, when configured.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/meattrack/internal/api"
	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/collab"
	"github.com/taibuivan/meattrack/internal/platform/config"
	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/cookie"
	"github.com/taibuivan/meattrack/internal/platform/middleware"
	"github.com/taibuivan/meattrack/internal/platform/migration"
	pgstore "github.com/taibuivan/meattrack/internal/platform/postgres"
	redisstore "github.com/taibuivan/meattrack/internal/platform/redis"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/users/account"
	"github.com/taibuivan/meattrack/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lives as long as the process; stops background goroutines on shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, pgstore.Settings{
		DSN:      cfg.DatabaseURL,
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, redisstore.Settings{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Stores ─────────────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	accountRepository := account.NewAccountRepository(pool)
	chatRepository := collab.NewChatRepository(pool)
	presenceRepository := collab.NewPresenceRepository(pool)
	recorder := audit.NewRecorder(pool)

	browserSessions := auth.NewBrowserSessionStore(rdb)
	nonces := auth.NewNonceStore(rdb)
	throttle := auth.NewLoginThrottle(rdb)

	signer, err := sec.NewLinkSigner(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize link signer")

	// ── 7. Services ───────────────────────────────────────────────────────
	chatService := collab.NewService(chatRepository, presenceRepository)

	sessionManager := auth.NewSessionManager(sessionRepository, browserSessions, userRepository, auth.SessionOptions{
		SessionTTL:        cfg.SessionTTL,
		RememberTTL:       cfg.RememberTTL,
		BrowserSessionTTL: cfg.BrowserSessionTTL,
	})
	csrfGuard := auth.NewCSRFGuard(browserSessions, cfg.BrowserSessionTTL)

	authService := auth.NewService(userRepository, sessionManager, nonces, throttle, chatService, recorder, signer, auth.Options{
		MaxFailures:            cfg.LoginMaxFailures,
		FailureWindow:          cfg.LoginFailureWindow,
		PublicBaseURL:          cfg.PublicBaseURL,
		ExposeVerificationLink: cfg.IsDevelopment(),
	})
	accountService := account.NewService(userRepository, accountRepository, sessionRepository, recorder, log)

	// ── 8. Bootstrap ──────────────────────────────────────────────────────
	if cfg.SeedUsersPath != "" {
		seedFile, err := auth.LoadSeedFile(cfg.SeedUsersPath)
		must(log, err, "load seed file")

		created, err := auth.Seed(startupCtx, userRepository, seedFile, log)
		must(log, err, "seed users")
		log.Info("seed_completed", slog.Int("created", created))
	}

	if cfg.SessionSweepSchedule != "" {
		scheduler, err := auth.NewSweeper(sessionRepository, log).Start(cfg.SessionSweepSchedule)
		must(log, err, "start session sweeper")
		defer func() {
			<-scheduler.Stop().Done()
		}()
	}

	// ── 9. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	jar := cookie.NewJar(cfg.CookieSecure)
	guard := middleware.NewGuard(middleware.GuardDeps{
		Sessions: sessionManager,
		CSRF:     csrfGuard,
		Roles:    authService,
		Flash:    sessionManager,
		Jar:      jar,
	})

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Guard:     guard,
		Auth:      auth.NewHandler(authService, csrfGuard, jar),
		Account:   account.NewHandler(accountService, guard),
		Chat:      collab.NewHandler(chatService, guard),
	}

	server := api.NewServer(appCtx, cfg, log, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger every component receives.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
