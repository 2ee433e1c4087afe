package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Engine finds the ranked items matching a query text
type Engine interface {
	Items(ctx context.Context, text string) ([]Item, error)
}

// Policy decides whether a query is too short to be counted in analytics
type Policy interface {
	MinQueryLengthActive(text string) bool
}

// Recorder receives query analytics writes.
// Implementations must make popularity increments atomic per query text.
type Recorder interface {
	RecordPopularity(ctx context.Context, q Query) error
	RecordResultCount(ctx context.Context, q Query, count int) error
}

// ServiceConfig holds the collaborators of a Service
type ServiceConfig struct {
	Engine   Engine
	Policy   Policy
	Recorder Recorder
	URLs     URLBuilder

	// BaseURL is where requests without a query are redirected
	BaseURL string

	// MaxQueryLength truncates query text (in runes); 0 disables truncation
	MaxQueryLength int

	Logger zerolog.Logger
}

// Outcome is the result of handling a suggestion request: either a
// redirect or a response payload.
type Outcome struct {
	Redirect string
	Response *Response
	Query    Query
}

// IsRedirect reports whether the request should be redirected
func (o Outcome) IsRedirect() bool {
	return o.Response == nil
}

// Service answers suggestion requests. It keeps no state between calls.
type Service struct {
	engine   Engine
	policy   Policy
	recorder Recorder
	urls     URLBuilder
	baseURL  string
	maxLen   int
	logger   zerolog.Logger
}

// NewService creates a suggestion service
func NewService(cfg ServiceConfig) *Service {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "/"
	}
	return &Service{
		engine:   cfg.Engine,
		policy:   cfg.Policy,
		recorder: cfg.Recorder,
		urls:     cfg.URLs,
		baseURL:  baseURL,
		maxLen:   cfg.MaxQueryLength,
		logger:   cfg.Logger,
	}
}

// NewQuery builds a Query from raw request text: trimmed, and truncated to
// maxLen runes when maxLen > 0.
func NewQuery(raw string, maxLen int) Query {
	text := strings.TrimSpace(raw)
	if maxLen > 0 {
		if runes := []rune(text); len(runes) > maxLen {
			text = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return Query{Text: text}
}

// Handle answers one suggestion request. A nil q means the parameter was
// absent from the request and yields a redirect to the base URL.
// Analytics failures are logged and never fail the request.
func (s *Service) Handle(ctx context.Context, q *string) (Outcome, error) {
	if q == nil {
		return Outcome{Redirect: s.baseURL}, nil
	}

	query := NewQuery(*q, s.maxLen)

	items, err := s.engine.Items(ctx, query.Text)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to get suggestion items: %w", err)
	}

	if query.Text != "" {
		if s.policy != nil && s.policy.MinQueryLengthActive(query.Text) {
			query.ID = 0
			query.IsActive = true
			query.IsProcessed = true
		} else {
			query.ResultCount = len(items)
			s.record(ctx, query, len(items))
		}
	}

	resp := Format(items, query, s.urls)

	s.logger.Debug().
		Str("query", query.Text).
		Int("size", resp.Info.Size).
		Int("results", len(resp.Results)).
		Msg("suggestions served")

	return Outcome{Response: &resp, Query: query}, nil
}

func (s *Service) record(ctx context.Context, query Query, count int) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordPopularity(ctx, query); err != nil {
		s.logger.Warn().Err(err).Str("query", query.Text).Msg("failed to record query popularity")
	}
	if err := s.recorder.RecordResultCount(ctx, query, count); err != nil {
		s.logger.Warn().Err(err).Str("query", query.Text).Msg("failed to record query result count")
	}
}
