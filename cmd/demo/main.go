// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Demo is the entry point for the wardauth demo host.

It wires the vault (the protocol engine in the module's vault package) to a
concrete PostgreSQL user directory and Redis session store and exposes
the resulting Login/Refresh/Logout/Me lifecycle over HTTP. No business
logic lives here: this file is strictly orchestration and wiring,
mirroring the teacher's own cmd/api/main.go startup sequence.

Usage:

	go run cmd/demo/main.go [flags]

The flags/environment variables are:

	SERVER_PORT       Port to listen on (default: 8080)
	ENVIRONMENT       deployment environment (development, production)
	DATABASE_URL      Postgres connection string (required)
	REDIS_URL         Redis connection string (required)
	KEY_MATERIAL_DIR  Directory holding the vault's PEM keys + password secret (required)
	AUTH_TOKEN_TTL    Auth credential lifetime (default: 15m)
	REFRESH_TOKEN_TTL Refresh credential lifetime (default: 24h)
	TRUST_TOKEN_BEARER Whether Resolve may skip the session-store round trip (default: false)

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish connections to Postgres and Redis.
 4. Migration: Run idempotent schema updates.
 5. Vault: Load key material and construct the vault over the Redis store.
 6. Wiring: Inject the directory into the vault and the vault into the HTTP handlers.
 7. Server: Bind HTTP listener and handle graceful shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/wardauth/wardauth/internal/api"
	"github.com/wardauth/wardauth/internal/hostdemo/directory"
	"github.com/wardauth/wardauth/internal/hostdemo/httpapi"
	"github.com/wardauth/wardauth/internal/platform/config"
	"github.com/wardauth/wardauth/internal/platform/constants"
	"github.com/wardauth/wardauth/internal/platform/migration"
	pgstore "github.com/wardauth/wardauth/internal/platform/postgres"
	redisstore "github.com/wardauth/wardauth/internal/platform/redis"
	"github.com/wardauth/wardauth/vault"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[wardauth] service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 4. Redis
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// # 5. Migrations
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 6. Vault Key Material
	keys, err := vault.NewPEMKeyLoader(cfg.KeyMaterialDir)
	if err != nil {
		return fmt.Errorf("load vault key material: %w", err)
	}

	// # 7. Session Store
	sessionStore := vault.NewRedisStore(rdb, constants.RedisPrefixSession)

	// # 8. Directory (user lookup + password hashing)
	hasher, err := vault.NewArgon2Hasher(keys.PasswordSecret(), vault.DefaultArgon2Params())
	if err != nil {
		return fmt.Errorf("construct password hasher: %w", err)
	}
	userDirectory := directory.NewPostgresDirectory(pool, hasher)

	// # 9. Vault Assembly
	v, err := vault.New(keys, userDirectory, cfg.TrustTokenBearer,
		vault.WithStore(sessionStore),
		vault.WithAuthTTL(cfg.AuthTokenTTL),
		vault.WithRefreshTTL(cfg.RefreshTokenTTL),
	)
	if err != nil {
		return fmt.Errorf("construct vault: %w", err)
	}

	// # 10. Health Wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// # 11. Auth Handler
	authHdl := httpapi.NewHandler(v, userDirectory)

	// # 12. API Assembly
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHdl,
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, v, handlers)

	// # 13. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("wardauth_demo_running", slog.String("port", cfg.ServerPort))

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	appCancel()

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}
