package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/api"
	"github.com/guidedcare/pathway/internal/buildconfig"
	"github.com/guidedcare/pathway/internal/config"
	"github.com/guidedcare/pathway/internal/rates"
	"github.com/guidedcare/pathway/internal/scoring"
)

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	// The handoff area is optional; without it gating serves projections.
	var rdb *redis.Client
	if redisURL := config.RedisURL(); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, running without handoff area", zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Info("connected to redis")
			defer func() { _ = rdb.Close() }()
		}
	}

	engine := scoring.NewEngine(config.ConfigDir(), buildconfig.Version(), logger)
	if err := engine.Load(); err != nil {
		logger.Fatal("failed to load scoring configuration", zap.Error(err))
	}

	ratesSvc := rates.NewService(config.ConfigDir(), logger)
	if err := ratesSvc.Load(); err != nil {
		logger.Fatal("failed to load rate tables", zap.Error(err))
	}

	app := api.NewApp(pool, rdb, engine, ratesSvc, logger)

	// Index the FAQ corpus. Search answers 503 until the first
	// successful index, so a broken corpus degrades instead of
	// blocking startup.
	if n, err := app.FAQ.Reindex(ctx); err != nil {
		logger.Warn("faq index failed, search disabled until reload", zap.Error(err))
	} else {
		logger.Info("faq corpus indexed", zap.Int("documents", n))
	}

	// SIGHUP reloads configuration in place. Each stage keeps its
	// previous state on failure.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			logger.Info("reload signal received")
			if err := engine.Reload(); err != nil {
				continue
			}
			if err := ratesSvc.Reload(); err != nil {
				continue
			}
			if n, err := app.FAQ.Reindex(ctx); err != nil {
				logger.Warn("faq reindex failed, serving previous index", zap.Error(err))
			} else {
				logger.Info("faq corpus reindexed", zap.Int("documents", n))
			}
		}
	}()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
