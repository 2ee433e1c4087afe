// Package analytics records search query popularity and result counts.
package analytics

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dsjohal14/quicksearch/internal/libs/jobs"
	"github.com/dsjohal14/quicksearch/internal/suggest"
)

// ErrQueueFull is returned by Async when a write could not be queued
var ErrQueueFull = errors.New("analytics queue full")

// Term is the stored analytics state of one query text
type Term struct {
	Text       string    `json:"query_text"`
	Popularity int64     `json:"popularity"`
	NumResults int       `json:"num_results"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Recorder records query analytics and lists the most popular terms
type Recorder interface {
	suggest.Recorder

	// Popular returns up to limit terms, most popular first
	Popular(ctx context.Context, limit int) ([]Term, error)
}

// TermSink receives absolute term snapshots from a Syncer
type TermSink interface {
	Upsert(ctx context.Context, terms []Term) error
}

// MemoryRecorder is an in-process recorder for development and tests
type MemoryRecorder struct {
	mu    sync.Mutex
	terms map[string]*Term
}

// NewMemoryRecorder creates an empty memory recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{terms: make(map[string]*Term)}
}

func (m *MemoryRecorder) term(text string) *Term {
	t, ok := m.terms[text]
	if !ok {
		t = &Term{Text: text}
		m.terms[text] = t
	}
	return t
}

// RecordPopularity increments the popularity of the query text
func (m *MemoryRecorder) RecordPopularity(_ context.Context, q suggest.Query) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.term(q.Text)
	t.Popularity++
	t.UpdatedAt = time.Now()
	return nil
}

// RecordResultCount stores the number of results found for the query text
func (m *MemoryRecorder) RecordResultCount(_ context.Context, q suggest.Query, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.term(q.Text)
	t.NumResults = count
	t.UpdatedAt = time.Now()
	return nil
}

// Upsert replaces terms with the given snapshots
func (m *MemoryRecorder) Upsert(_ context.Context, terms []Term) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range terms {
		copied := t
		m.terms[t.Text] = &copied
	}
	return nil
}

// Get returns the term for a query text
func (m *MemoryRecorder) Get(text string) (Term, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.terms[text]
	if !ok {
		return Term{}, false
	}
	return *t, true
}

// Popular returns up to limit terms, most popular first
func (m *MemoryRecorder) Popular(_ context.Context, limit int) ([]Term, error) {
	m.mu.Lock()
	terms := make([]Term, 0, len(m.terms))
	for _, t := range m.terms {
		terms = append(terms, *t)
	}
	m.mu.Unlock()

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Popularity != terms[j].Popularity {
			return terms[i].Popularity > terms[j].Popularity
		}
		return terms[i].Text < terms[j].Text
	})

	if limit > 0 && limit < len(terms) {
		terms = terms[:limit]
	}
	return terms, nil
}

// Async defers writes to a background job queue so they never block a request
type Async struct {
	next  Recorder
	queue *jobs.Queue
}

// NewAsync wraps next so writes run on queue
func NewAsync(next Recorder, queue *jobs.Queue) *Async {
	return &Async{next: next, queue: queue}
}

// RecordPopularity queues a popularity increment
func (a *Async) RecordPopularity(_ context.Context, q suggest.Query) error {
	job := a.queue.Enqueue("record_popularity", func(ctx context.Context) error {
		return a.next.RecordPopularity(ctx, q)
	})
	if job == nil {
		return ErrQueueFull
	}
	return nil
}

// RecordResultCount queues a result count write
func (a *Async) RecordResultCount(_ context.Context, q suggest.Query, count int) error {
	job := a.queue.Enqueue("record_result_count", func(ctx context.Context) error {
		return a.next.RecordResultCount(ctx, q, count)
	})
	if job == nil {
		return ErrQueueFull
	}
	return nil
}

// Popular reads through to the wrapped recorder
func (a *Async) Popular(ctx context.Context, limit int) ([]Term, error) {
	return a.next.Popular(ctx, limit)
}

var (
	_ Recorder = (*MemoryRecorder)(nil)
	_ Recorder = (*Async)(nil)
	_ TermSink = (*MemoryRecorder)(nil)
)
