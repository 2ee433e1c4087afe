package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/dsjohal14/quicksearch/internal/suggest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder implements Recorder and TermSink using PostgreSQL.
// Popularity increments are single UPDATE statements, so concurrent
// requests for the same text never lose counts.
type PostgresRecorder struct {
	db *pgxpool.Pool
}

// NewPostgresRecorder creates a new PostgreSQL-backed recorder
func NewPostgresRecorder(db *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// RecordPopularity increments the popularity of the query text
func (p *PostgresRecorder) RecordPopularity(ctx context.Context, q suggest.Query) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO search_query (query_text, popularity, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (query_text) DO UPDATE
		SET popularity = search_query.popularity + 1, updated_at = NOW()
	`, q.Text)
	if err != nil {
		return fmt.Errorf("failed to record popularity: %w", err)
	}
	return nil
}

// RecordResultCount stores the number of results found for the query text
func (p *PostgresRecorder) RecordResultCount(ctx context.Context, q suggest.Query, count int) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO search_query (query_text, num_results, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (query_text) DO UPDATE
		SET num_results = EXCLUDED.num_results, updated_at = NOW()
	`, q.Text, count)
	if err != nil {
		return fmt.Errorf("failed to record result count: %w", err)
	}
	return nil
}

// Popular returns up to limit terms, most popular first
func (p *PostgresRecorder) Popular(ctx context.Context, limit int) ([]Term, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := p.db.Query(ctx, `
		SELECT query_text, popularity, num_results, updated_at
		FROM search_query
		ORDER BY popularity DESC, query_text ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular terms: %w", err)
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.Text, &t.Popularity, &t.NumResults, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		terms = append(terms, t)
	}

	return terms, rows.Err()
}

// Upsert writes absolute term snapshots in a single round trip
func (p *PostgresRecorder) Upsert(ctx context.Context, terms []Term) error {
	if len(terms) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range terms {
		updatedAt := t.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		batch.Queue(`
			INSERT INTO search_query (query_text, popularity, num_results, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (query_text) DO UPDATE
			SET popularity = EXCLUDED.popularity,
			    num_results = EXCLUDED.num_results,
			    updated_at = EXCLUDED.updated_at
		`, t.Text, t.Popularity, t.NumResults, updatedAt)
	}

	results := p.db.SendBatch(ctx, batch)
	for _, t := range terms {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to upsert term %q: %w", t.Text, err)
		}
	}
	return results.Close()
}

var (
	_ Recorder = (*PostgresRecorder)(nil)
	_ TermSink = (*PostgresRecorder)(nil)
)
