// cmd/match-manager/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lovefi-matcher/internal/common/camunda"
	"lovefi-matcher/internal/common/config"
	"lovefi-matcher/internal/common/database"
	"lovefi-matcher/internal/common/logger"
	"lovefi-matcher/internal/common/observability"
	"lovefi-matcher/internal/server"
	cc "lovefi-matcher/internal/workers/matching/calculate-compatibility"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	var outputs []string
	if cfg.Logging.Output != "" {
		outputs = append(outputs, cfg.Logging.Output)
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, outputs...)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting match manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	var obsOpts []observability.Option
	if cfg.Tracing.Enabled {
		obsOpts = append(obsOpts, observability.WithJaeger(cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio))
	}
	obs, err := observability.New(cfg.App.Name, obsOpts...)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checkers []server.Checker

	// --- Profile directory (optional) ---
	var db *sql.DB
	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err = retryWithBackoff(ctx, func() error {
			client, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := client.Ping(ctx); err != nil {
				client.Close()
				return err
			}
			pg = client
			return nil
		}, camunda.IsTransient, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		db = pg.DB
		checkers = append(checkers, pg)
		zapLog.Info("PostgreSQL connected successfully")
	} else {
		zapLog.Info("PostgreSQL not configured, id based profile lookup disabled")
	}

	// --- Profile cache (optional) ---
	var rdb *redis.Client
	if cfg.Database.Redis.Enabled() {
		var rc *database.RedisClient
		err = retryWithBackoff(ctx, func() error {
			client, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := client.Ping(ctx); err != nil {
				client.Close()
				return err
			}
			rc = client
			return nil
		}, camunda.IsTransient, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		rdb = rc.Client
		checkers = append(checkers, rc)
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Info("Redis not configured, profile cache disabled")
	}

	// --- Zeebe worker (optional) ---
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(ctx, func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda)
			return err
		}, camunda.IsTransient, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer func() {
			if err := zeebe.Close(); err != nil {
				zapLog.Error("Error closing Zeebe client", zap.Error(err))
			}
		}()
		checkers = append(checkers, zeebe)
		zapLog.Info("Zeebe client connected successfully")

		handler := cc.NewHandler(cc.LoadConfig(cfg), db, rdb, log).WithObservability(obs)
		w := camunda.StartWorker(zeebe.GetClient(), cc.TaskType, config.GetWorkerConfig(cfg, cc.TaskType), handler.Handle, zapLog)
		defer w.Stop()
	}

	srv, err := server.New(cfg.Server, cfg.Scoring, log,
		server.WithObservability(obs),
		server.WithCheckers(checkers...),
	)
	if err != nil {
		zapLog.Fatal("http server init failed", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		zapLog.Error("http server failed", zap.Error(err))
	}

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Match manager stopped gracefully")
}
