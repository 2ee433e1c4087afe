// Package streamlite provides connectors that feed catalog products into the store.
package streamlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dsjohal14/quicksearch/internal/scope/catalog"
	"github.com/rs/zerolog"
)

// maxLineSize bounds one feed record
const maxLineSize = 1 << 20

// Connector represents a product source
type Connector interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

// Sink receives products from a connector
type Sink interface {
	Add(p catalog.Product) error
}

// BaseConnector provides common functionality for all connectors
type BaseConnector struct {
	name      string
	startedAt time.Time
}

// NewBaseConnector creates a new base connector
func NewBaseConnector(name string) *BaseConnector {
	return &BaseConnector{
		name: name,
	}
}

// Name returns the connector name
func (c *BaseConnector) Name() string {
	return c.name
}

// Start marks the connector as started
func (c *BaseConnector) Start(context.Context) error {
	c.startedAt = time.Now()
	return nil
}

// Stop is a no-op for connectors without resources
func (c *BaseConnector) Stop() error {
	return nil
}

// Stats counts what a feed run did
type Stats struct {
	Loaded  int
	Skipped int
}

// FileFeed loads a JSONL product feed, one catalog.Product per line.
// Malformed records and records without id or name are skipped.
type FileFeed struct {
	*BaseConnector
	path   string
	sink   Sink
	logger zerolog.Logger
	stats  Stats
}

// NewFileFeed creates a feed reading path into sink
func NewFileFeed(path string, sink Sink, logger zerolog.Logger) *FileFeed {
	return &FileFeed{
		BaseConnector: NewBaseConnector("file:" + path),
		path:          path,
		sink:          sink,
		logger:        logger,
	}
}

// Start loads the whole feed
func (f *FileFeed) Start(ctx context.Context) error {
	_ = f.BaseConnector.Start(ctx)

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open feed: %w", err)
	}
	defer func() { _ = file.Close() }()

	stats, err := Load(ctx, file, f.sink, f.logger)
	f.stats = stats
	if err != nil {
		return err
	}

	f.logger.Info().
		Str("feed", f.path).
		Int("loaded", stats.Loaded).
		Int("skipped", stats.Skipped).
		Msg("catalog feed loaded")
	return nil
}

// Stats returns the counters of the last Start
func (f *FileFeed) Stats() Stats {
	return f.stats
}

// Load reads JSONL products from r into sink
func Load(ctx context.Context, r io.Reader, sink Sink, logger zerolog.Logger) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var p catalog.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping malformed product")
			stats.Skipped++
			continue
		}
		if p.ID == "" || strings.TrimSpace(p.Name) == "" {
			logger.Warn().Int("line", line).Msg("skipping product without id or name")
			stats.Skipped++
			continue
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}

		if err := sink.Add(p); err != nil {
			return stats, fmt.Errorf("failed to add product %s: %w", p.ID, err)
		}
		stats.Loaded++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read feed: %w", err)
	}
	return stats, nil
}

var _ Connector = (*FileFeed)(nil)
