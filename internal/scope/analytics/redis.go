package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dsjohal14/quicksearch/internal/suggest"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces all analytics keys
const DefaultKeyPrefix = "quicksearch:"

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

// DialRedis connects to Redis and verifies the connection
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// RedisRecorder keeps per-term counters in Redis hashes.
// HINCRBY gives atomic popularity increments across API instances, and a
// dirty set tracks terms that changed since the last sync.
type RedisRecorder struct {
	client *redis.Client
	prefix string
}

// NewRedisRecorder creates a Redis-backed recorder. An empty prefix uses DefaultKeyPrefix.
func NewRedisRecorder(client *redis.Client, prefix string) *RedisRecorder {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisRecorder{client: client, prefix: prefix}
}

func (r *RedisRecorder) termKey(text string) string { return r.prefix + "term:" + text }
func (r *RedisRecorder) popularKey() string         { return r.prefix + "popular" }
func (r *RedisRecorder) dirtyKey() string           { return r.prefix + "dirty" }

// RecordPopularity increments the popularity of the query text
func (r *RedisRecorder) RecordPopularity(ctx context.Context, q suggest.Query) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, r.termKey(q.Text), "popularity", 1)
		pipe.HSet(ctx, r.termKey(q.Text), "updated_at", time.Now().Unix())
		pipe.ZIncrBy(ctx, r.popularKey(), 1, q.Text)
		pipe.SAdd(ctx, r.dirtyKey(), q.Text)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record popularity: %w", err)
	}
	return nil
}

// RecordResultCount stores the number of results found for the query text
func (r *RedisRecorder) RecordResultCount(ctx context.Context, q suggest.Query, count int) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.termKey(q.Text), "num_results", count, "updated_at", time.Now().Unix())
		pipe.SAdd(ctx, r.dirtyKey(), q.Text)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record result count: %w", err)
	}
	return nil
}

// Popular returns up to limit terms, most popular first
func (r *RedisRecorder) Popular(ctx context.Context, limit int) ([]Term, error) {
	if limit <= 0 {
		limit = 10
	}

	ranked, err := r.client.ZRevRangeWithScores(ctx, r.popularKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read popular terms: %w", err)
	}

	terms := make([]Term, 0, len(ranked))
	for _, z := range ranked {
		text, ok := z.Member.(string)
		if !ok {
			continue
		}
		t, err := r.load(ctx, text)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// PopDirty removes up to n changed terms from the dirty set and returns their current state
func (r *RedisRecorder) PopDirty(ctx context.Context, n int) ([]Term, error) {
	texts, err := r.client.SPopN(ctx, r.dirtyKey(), int64(n)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop dirty terms: %w", err)
	}

	terms := make([]Term, 0, len(texts))
	for _, text := range texts {
		t, err := r.load(ctx, text)
		if err != nil {
			_ = r.MarkDirty(ctx, texts...)
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// MarkDirty flags terms for the next sync
func (r *RedisRecorder) MarkDirty(ctx context.Context, texts ...string) error {
	if len(texts) == 0 {
		return nil
	}
	members := make([]interface{}, len(texts))
	for i, text := range texts {
		members[i] = text
	}
	if err := r.client.SAdd(ctx, r.dirtyKey(), members...).Err(); err != nil {
		return fmt.Errorf("failed to mark terms dirty: %w", err)
	}
	return nil
}

func (r *RedisRecorder) load(ctx context.Context, text string) (Term, error) {
	fields, err := r.client.HGetAll(ctx, r.termKey(text)).Result()
	if err != nil {
		return Term{}, fmt.Errorf("failed to load term %q: %w", text, err)
	}

	t := Term{Text: text}
	if v, ok := fields["popularity"]; ok {
		t.Popularity, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields["num_results"]; ok {
		t.NumResults, _ = strconv.Atoi(v)
	}
	if v, ok := fields["updated_at"]; ok {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			t.UpdatedAt = time.Unix(unix, 0)
		}
	}
	return t, nil
}

var _ Recorder = (*RedisRecorder)(nil)
