// Package main is the entry point for the tradebook API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradebook/internal/app"
	"tradebook/internal/config"
	"tradebook/internal/domain/auth"
	v1 "tradebook/internal/infrastructure/http/v1"
	"tradebook/internal/infrastructure/metrics"
	"tradebook/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting tradebook server", "storage", cfg.StorageDriver, "env", cfg.AppEnv)

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer storage.Close()

	m := metrics.New()
	if storage.Pool != nil {
		m.RegisterPool(storage.Pool)
	}

	routerCfg := v1.RouterConfig{
		Services:      app.NewServices(storage, cfg, m),
		Storage:       storage,
		StorageDriver: cfg.StorageDriver,
		Logger:        log,
		Metrics:       m,
		Release:       !cfg.Development(),
	}
	if cfg.IdempotencyEnabled {
		routerCfg.Idempotency = storage.Idempotency
	}
	if cfg.JWTSecret != "" {
		routerCfg.JWTValidator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	} else {
		log.Warn("JWT_SECRET not set, API runs without authentication")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           v1.NewHandler(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
