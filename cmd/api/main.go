// Copyright (c) 2026 Library. All rights reserved.

// Command api is the entry point for the library HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and .env).
//  3. Open the catalogue store: PostgreSQL (with migrations) or in-memory.
//  4. Connect to Redis when settings are enabled.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/zrecovery/library-sub000/internal/api"
	"github.com/zrecovery/library-sub000/internal/library"
	"github.com/zrecovery/library-sub000/internal/platform/config"
	"github.com/zrecovery/library-sub000/internal/platform/constants"
	"github.com/zrecovery/library-sub000/internal/platform/migration"
	pgstore "github.com/zrecovery/library-sub000/internal/platform/postgres"
	redisstore "github.com/zrecovery/library-sub000/internal/platform/redis"
	"github.com/zrecovery/library-sub000/internal/settings"
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
		slog.String("store", cfg.StoreDriver),
	)

	// Root context cancelled on SIGINT/SIGTERM; it also stops background
	// middleware goroutines.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	health := api.HealthDependencies{}

	// ── 3. Catalogue store ────────────────────────────────────────────────
	var repository library.Repository
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("memory_store_selected", slog.String("note", "data is lost on exit"))
		repository = library.NewMemoryRepository()
	default:
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.Pool, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		health.CheckDatabase = func() error { return pgstore.Ping(context.Background(), pool) }
		repository = library.NewPostgresRepository(pool)
	}

	// ── 4. Redis (settings) ───────────────────────────────────────────────
	var settingsHandler *settings.Handler
	if cfg.SettingsEnabled() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer closeRedis(log, rdb)

		health.CheckCache = func() error { return redisstore.Ping(context.Background(), rdb) }
		settingsHandler = settings.NewHandler(settings.NewService(settings.NewRedisRepository(rdb), log))
	} else {
		log.Info("settings_disabled", slog.String("reason", "REDIS_URL not set"))
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(health, log)
	libraryService := library.NewService(repository, log)

	server := api.NewServer(rootCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Library:   library.NewHandler(libraryService),
		Settings:  settingsHandler,
	})

	// ── 6. Serve until signalled ──────────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		return
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

func closeRedis(log *slog.Logger, rdb *goredis.Client) {
	log.Info("closing_redis_client")
	if err := rdb.Close(); err != nil {
		log.Error("redis_close_error", slog.Any("error", err))
	}
}

// must logs a structured fatal error and terminates the process if err is
// non-nil. Only used during startup wiring.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
