// Package main implements the HTTP API server for Quicksearch.
package main

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "github.com/dsjohal14/quicksearch/internal/http"
	"github.com/dsjohal14/quicksearch/internal/libs/config"
	"github.com/dsjohal14/quicksearch/internal/libs/jobs"
	"github.com/dsjohal14/quicksearch/internal/libs/obs"
	"github.com/dsjohal14/quicksearch/internal/scope/analytics"
	"github.com/dsjohal14/quicksearch/internal/scope/catalog"
	"github.com/dsjohal14/quicksearch/internal/scope/db"
	"github.com/dsjohal14/quicksearch/internal/scope/search"
	"github.com/dsjohal14/quicksearch/internal/streamlite"
	"github.com/dsjohal14/quicksearch/internal/suggest"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize catalog")
	}
	defer func() { _ = store.Close() }()

	if cfg.FeedFile != "" {
		feed := streamlite.NewFileFeed(cfg.FeedFile, store, obs.Logger("feed"))
		if err := feed.Start(ctx); err != nil {
			logger.Fatal().Err(err).Str("feed", cfg.FeedFile).Msg("failed to load catalog feed")
		}
		if err := store.Flush(); err != nil {
			logger.Error().Err(err).Msg("failed to flush catalog")
		}
	}
	logger.Info().Int("product_count", store.Count()).Msg("catalog loaded")

	recorder, closeRecorder, err := initRecorder(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize analytics")
	}
	defer closeRecorder()

	queue := jobs.NewQueue(cfg.AnalyticsQueueSize, obs.Logger("jobs"))
	asyncRecorder := analytics.NewAsync(recorder, queue)

	engine := search.NewCatalogEngine(store, search.Presenter{
		BaseURL:          cfg.BaseURL,
		MediaBaseURL:     cfg.MediaBaseURL,
		PlaceholderImage: cfg.PlaceholderImage,
	})

	service := suggest.NewService(suggest.ServiceConfig{
		Engine:         engine,
		Policy:         search.LengthPolicy{Min: cfg.MinQueryLength},
		Recorder:       asyncRecorder,
		URLs:           search.ResultURLBuilder{BaseURL: cfg.BaseURL},
		BaseURL:        cfg.BaseURL,
		MaxQueryLength: cfg.MaxQueryLength,
		Logger:         obs.Logger("suggest"),
	})

	handler := apihttp.NewHandler(apihttp.Deps{
		Catalog:  store,
		Service:  service,
		Engine:   engine,
		Recorder: asyncRecorder,
	}, logger)

	var limiter *apihttp.IPRateLimiter
	if cfg.SuggestRateLimit > 0 {
		burst := int(math.Ceil(cfg.SuggestRateLimit))
		limiter = apihttp.NewIPRateLimiter(rate.Limit(cfg.SuggestRateLimit), burst, logger)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           apihttp.NewRouter(handler, limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queue.Run(gctx)
	})

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server failed")
	}

	stats := queue.Stats()
	logger.Info().
		Int64("processed", stats.Processed).
		Int64("failed", stats.Failed).
		Int64("dropped", stats.Dropped).
		Msg("analytics queue stopped")
}

// initRecorder picks the analytics backend: Redis when REDIS_URL is set,
// then Postgres when DATABASE_URL is set, else in-memory.
func initRecorder(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (analytics.Recorder, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if cfg.RedisURL != "" {
		client, err := analytics.DialRedis(connectCtx, analytics.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("using Redis analytics recorder")
		return analytics.NewRedisRecorder(client, ""), func() { _ = client.Close() }, nil
	}

	if cfg.DatabaseURL != "" {
		database, err := db.New(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(connectCtx); err != nil {
			database.Close()
			return nil, nil, err
		}
		logger.Info().Msg("using Postgres analytics recorder")
		return analytics.NewPostgresRecorder(database.Pool()), database.Close, nil
	}

	logger.Warn().Msg("no REDIS_URL or DATABASE_URL, analytics kept in memory")
	return analytics.NewMemoryRecorder(), func() {}, nil
}
