package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/dsjohal14/quicksearch/internal/libs/accel"
	"github.com/rs/zerolog"
)

// Syncer copies changed terms from Redis into a durable sink
type Syncer struct {
	source *RedisRecorder
	sink   TermSink
	batch  *accel.Batch
	maxRun int
	logger zerolog.Logger
}

// NewSyncer creates a syncer writing batch.Size() terms per sink call
func NewSyncer(source *RedisRecorder, sink TermSink, batch *accel.Batch, logger zerolog.Logger) *Syncer {
	return &Syncer{
		source: source,
		sink:   sink,
		batch:  batch,
		maxRun: batch.Size() * 10,
		logger: logger,
	}
}

// SyncOnce moves pending terms to the sink and returns how many were written.
// Terms from a failed batch, and every batch after it, are marked dirty again.
func (s *Syncer) SyncOnce(ctx context.Context) (int, error) {
	total := 0
	for {
		terms, err := s.source.PopDirty(ctx, s.maxRun)
		if err != nil {
			return total, err
		}
		if len(terms) == 0 {
			return total, nil
		}

		chunks := accel.Split(s.batch, terms)
		for i, chunk := range chunks {
			if err := s.sink.Upsert(ctx, chunk); err != nil {
				var texts []string
				for _, rest := range chunks[i:] {
					for _, t := range rest {
						texts = append(texts, t.Text)
					}
				}
				if rerr := s.source.MarkDirty(ctx, texts...); rerr != nil {
					s.logger.Error().Err(rerr).Int("terms", len(texts)).Msg("failed to requeue terms")
				}
				return total, fmt.Errorf("failed to sync terms: %w", err)
			}
			total += len(chunk)
		}

		if len(terms) < s.maxRun {
			return total, nil
		}
	}
}

// Run syncs every interval until ctx is cancelled
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.SyncOnce(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Int("synced", n).Msg("analytics sync failed")
				continue
			}
			if n > 0 {
				s.logger.Info().Int("synced", n).Msg("analytics synced")
			}
		}
	}
}
