// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Schemely identity API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the session token service (fails fast without a secret).
//  4. Connect the credential store selected by STORE_DRIVER and prepare it
//     (Postgres migrations or Mongo indexes).
//  5. Connect Redis when configured, otherwise throttle logins in memory.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
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

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taibuivan/schemely/internal/api"
	"github.com/taibuivan/schemely/internal/platform/config"
	"github.com/taibuivan/schemely/internal/platform/constants"
	"github.com/taibuivan/schemely/internal/platform/middleware"
	"github.com/taibuivan/schemely/internal/platform/migration"
	mongostore "github.com/taibuivan/schemely/internal/platform/mongo"
	pgstore "github.com/taibuivan/schemely/internal/platform/postgres"
	"github.com/taibuivan/schemely/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/schemely/internal/platform/redis"
	"github.com/taibuivan/schemely/internal/platform/sec"
	"github.com/taibuivan/schemely/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
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
		slog.String("store_driver", cfg.StoreDriver),
	)

	// Bounds the initial store connection and migrations so misconfiguration
	// fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Session Tokens ─────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	must(log, err, "initialize token service")

	// ── 4. Credential Store ───────────────────────────────────────────────
	users, closeStore := openUserStore(startupCtx, cfg, log)
	defer closeStore()

	checks := []api.HealthCheck{{Name: cfg.StoreDriver, Check: users.Ping}}

	// ── 5. Login Throttle ─────────────────────────────────────────────────
	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}()

		limiter = ratelimit.NewRedis(rdb, constants.RedisPrefixLoginThrottle, log)
		checks = append(checks, api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	} else {
		log.Info("login_throttle_in_memory")
		limiter = ratelimit.NewMemory()
	}
	defer limiter.Close()

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(log, checks...)

	authService := auth.NewService(users, tokens)
	authHandler := auth.NewHandler(authService, cfg.IsProduction())

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, tokens, api.Handlers{
		Liveness:      liveness,
		Readiness:     readiness,
		Auth:          authHandler,
		LoginThrottle: middleware.LoginThrottle(limiter, cfg.LoginRateLimit, cfg.LoginRateWindow),
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// openUserStore connects the configured credential store and returns the
// repository with its cleanup function.
func openUserStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.UserRepository, func()) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		databases := mongostore.Connector(cfg.MongoURI, cfg.MongoDatabase, log)
		_, err := databases.Get(ctx)
		must(log, err, "connect to mongo")

		repository := auth.NewMongoUserRepository(databases)
		must(log, repository.EnsureIndexes(ctx), "ensure mongo indexes")

		return repository, func() {
			log.Info("closing_mongo_client")
			databases.Close(func(database *mongo.Database) {
				if err := mongostore.Disconnect(context.Background(), database); err != nil {
					log.Error("mongo_close_error", slog.Any("error", err))
				}
			})
		}

	default:
		pools := pgstore.Connector(cfg.DatabaseURL, log)
		_, err := pools.Get(ctx)
		must(log, err, "connect to postgres")

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		return auth.NewPostgresUserRepository(pools), func() {
			log.Info("closing_postgres_pool")
			pools.Close(func(pool *pgxpool.Pool) { pool.Close() })
		}
	}
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, errors are returned and handled.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
