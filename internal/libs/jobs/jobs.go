// Package jobs provides a bounded background job queue for best-effort async work.
package jobs

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Job status values
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Job represents a background job
type Job struct {
	ID        string
	Name      string
	Status    string
	CreatedAt time.Time
	run       func(ctx context.Context) error
}

// Stats is a snapshot of queue counters
type Stats struct {
	Pending   int
	Processed int64
	Failed    int64
	Dropped   int64
}

// Queue runs jobs on a single worker goroutine.
// Enqueue never blocks: when the buffer is full the job is dropped.
type Queue struct {
	jobs      chan *Job
	logger    zerolog.Logger
	timeout   time.Duration
	seq       atomic.Uint64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewQueue creates a new job queue holding at most size pending jobs
func NewQueue(size int, logger zerolog.Logger) *Queue {
	if size <= 0 {
		size = 1024
	}
	return &Queue{
		jobs:    make(chan *Job, size),
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Enqueue adds a job to the queue. It returns nil when the job was dropped.
func (q *Queue) Enqueue(name string, run func(ctx context.Context) error) *Job {
	job := &Job{
		ID:        strconv.FormatUint(q.seq.Add(1), 10),
		Name:      name,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		run:       run,
	}

	select {
	case q.jobs <- job:
		return job
	default:
		q.dropped.Add(1)
		q.logger.Warn().Str("job", name).Msg("job queue full, dropping job")
		return nil
	}
}

// Run processes jobs until ctx is cancelled, then drains what is already queued
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case job := <-q.jobs:
			q.execute(job)
		case <-ctx.Done():
			q.drain()
			return nil
		}
	}
}

func (q *Queue) drain() {
	for {
		select {
		case job := <-q.jobs:
			q.execute(job)
		default:
			return
		}
	}
}

func (q *Queue) execute(job *Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := job.run(ctx); err != nil {
		job.Status = StatusFailed
		q.failed.Add(1)
		q.logger.Warn().Err(err).Str("job", job.Name).Str("job_id", job.ID).Msg("job failed")
		return
	}
	job.Status = StatusDone
	q.processed.Add(1)
}

// Count returns the number of pending jobs
func (q *Queue) Count() int {
	return len(q.jobs)
}

// Stats returns the queue counters
func (q *Queue) Stats() Stats {
	return Stats{
		Pending:   len(q.jobs),
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
	}
}
