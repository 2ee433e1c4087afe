package widget

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when posting to a loop that has stopped
var ErrClosed = errors.New("widget loop closed")

// Dispatcher runs f on the widget's event goroutine
type Dispatcher func(f func())

// Inline runs f immediately on the caller's goroutine.
// Use it when the caller already serializes every widget call.
func Inline(f func()) { f() }

// Loop is a single-goroutine event loop
type Loop struct {
	events chan func()
	done   chan struct{}
	once   sync.Once
}

// NewLoop creates a loop buffering up to size pending events
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		events: make(chan func(), size),
		done:   make(chan struct{}),
	}
}

// Post queues f, blocking while the buffer is full
func (l *Loop) Post(f func()) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}

	select {
	case l.events <- f:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Dispatch is Post as a Dispatcher. Events posted after the loop stops are dropped.
func (l *Loop) Dispatch(f func()) {
	_ = l.Post(f)
}

// Run executes events until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case f := <-l.events:
			f()
		case <-ctx.Done():
			return nil
		}
	}
}

// Handle cancels a scheduled callback
type Handle interface {
	// Stop prevents the callback from firing. It reports false when the
	// callback already fired or was stopped.
	Stop() bool
}

// Clock schedules delayed callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Handle
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

// Debouncer keeps at most one pending callback. Scheduling a new one
// cancels the previous. Schedule and Cancel must run on the dispatcher's
// goroutine; callbacks are posted there too.
type Debouncer struct {
	clock   Clock
	delay   time.Duration
	post    Dispatcher
	pending Handle
	gen     uint64
}

// NewDebouncer creates a debouncer firing delay after the last Schedule
func NewDebouncer(clock Clock, delay time.Duration, post Dispatcher) *Debouncer {
	if clock == nil {
		clock = realClock{}
	}
	return &Debouncer{clock: clock, delay: delay, post: post}
}

// Schedule cancels any pending callback and schedules f
func (d *Debouncer) Schedule(f func()) {
	d.Cancel()

	gen := d.gen
	d.pending = d.clock.AfterFunc(d.delay, func() {
		d.post(func() {
			// A timer that fired while being stopped still posts; drop it.
			if gen != d.gen {
				return
			}
			d.pending = nil
			f()
		})
	})
}

// Cancel drops the pending callback, if any
func (d *Debouncer) Cancel() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.gen++
}

// Pending reports whether a callback is scheduled and has not fired
func (d *Debouncer) Pending() bool {
	return d.pending != nil
}
