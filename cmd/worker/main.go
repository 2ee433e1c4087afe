// Package main implements the worker that syncs search analytics from Redis into Postgres.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dsjohal14/quicksearch/internal/libs/accel"
	"github.com/dsjohal14/quicksearch/internal/libs/config"
	"github.com/dsjohal14/quicksearch/internal/libs/obs"
	"github.com/dsjohal14/quicksearch/internal/scope/analytics"
	"github.com/dsjohal14/quicksearch/internal/scope/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("worker")

	if cfg.RedisURL == "" || cfg.DatabaseURL == "" {
		logger.Fatal().Msg("worker requires REDIS_URL and DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := analytics.DialRedis(connectCtx, analytics.RedisConfig{URL: cfg.RedisURL})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = client.Close() }()

	database, err := db.New(connectCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(connectCtx); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	syncer := analytics.NewSyncer(
		analytics.NewRedisRecorder(client, ""),
		analytics.NewPostgresRecorder(database.Pool()),
		accel.NewBatch(cfg.SyncBatchSize),
		logger,
	)

	logger.Info().
		Dur("interval", cfg.SyncInterval).
		Int("batch_size", cfg.SyncBatchSize).
		Msg("worker started")

	_ = syncer.Run(ctx, cfg.SyncInterval)

	// Final pass so counts recorded since the last tick are not left behind
	finalCtx, finalCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer finalCancel()
	n, err := syncer.SyncOnce(finalCtx)
	if err != nil {
		logger.Error().Err(err).Msg("final analytics sync failed")
	}
	logger.Info().Int("synced", n).Msg("worker stopped")
}
