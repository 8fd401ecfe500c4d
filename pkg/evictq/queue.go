package evictq

import (
	"io"
	"iter"
	"log/slog"
	"sync"
	"time"
)

type options struct {
	capacity int
	logger   *slog.Logger
}

// Option configures a Queue.
type Option func(*options)

// WithCapacity bounds the queue to n items. When a Put would exceed the
// bound, the oldest item is evicted first. Values of n less than or equal
// to zero leave the queue unbounded (the default).
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLogger configures structured logging for the queue.
// Logging is disabled by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Queue is a thread-safe FIFO queue with blocking gets and evicting,
// non-blocking puts. A bounded queue drops its oldest item to admit a new
// one, so producers never block and never fail; consumers block until an
// item arrives, a timeout elapses, or the queue is stopped.
//
// Stop is the queue's only cancellation primitive. It is idempotent,
// wakes every blocked consumer, and is terminal: once a consumer observes
// the stopped state it receives ErrStopped even if items remain buffered
// (the stopped check wins over delivery at the decision point). A Get that
// acquires the lock before Stop does still returns its item.
//
// Example:
//
//	q := evictq.New[int](evictq.WithCapacity(64))
//
//	go func() {
//		for v := range source {
//			q.Put(v)
//		}
//		q.Stop()
//	}()
//
//	for v := range q.All() {
//		process(v)
//	}
type Queue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	capacity int
	stopped  bool
	logger   *slog.Logger
}

// New creates a queue. Without WithCapacity the queue is unbounded.
func New[T any](opts ...Option) *Queue[T] {
	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	q := &Queue[T]{
		capacity: o.capacity,
		logger:   o.logger,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put appends v to the queue, evicting the oldest item if the queue is at
// capacity. It never blocks and wakes all blocked consumers.
func (q *Queue[T]) Put(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && len(q.items) >= q.capacity {
		q.popOldestLocked()
		q.logger.Debug("evicted oldest item", slog.Int("capacity", q.capacity))
	}
	q.items = append(q.items, v)
	q.cond.Broadcast()
}

// Get blocks until an item is available and returns the oldest one.
// Returns ErrStopped once the queue has been stopped.
func (q *Queue[T]) Get() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.stopped && len(q.items) == 0 {
		q.cond.Wait()
	}
	if q.stopped {
		var zero T
		return zero, ErrStopped
	}
	return q.popOldestLocked(), nil
}

// GetTimeout is Get with a deadline. Returns ErrTimeout if no item becomes
// available within timeout, and ErrStopped once the queue has been stopped.
// A timeout of zero or less makes a single non-blocking attempt.
func (q *Queue[T]) GetTimeout(timeout time.Duration) (T, error) {
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.stopped && len(q.items) == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			var zero T
			return zero, ErrTimeout
		}
		// sync.Cond has no timed wait; the timer broadcast wakes this
		// waiter so the deadline is re-checked under the lock.
		timer := time.AfterFunc(remaining, q.cond.Broadcast)
		q.cond.Wait()
		timer.Stop()
	}
	if q.stopped {
		var zero T
		return zero, ErrStopped
	}
	return q.popOldestLocked(), nil
}

// Peek returns the newest item without removing it. Returns ErrEmpty when
// the queue is empty. The result is a point-in-time snapshot and may be
// stale by the time the caller acts on it.
func (q *Queue[T]) Peek() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return q.items[len(q.items)-1], nil
}

// PeekOldest returns the item the next Get would return, without removing
// it. Returns ErrEmpty when the queue is empty. Best-effort snapshot, same
// as Peek.
func (q *Queue[T]) PeekOldest() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return q.items[0], nil
}

// Flush consumes and returns all items currently available, in FIFO order.
// Returns nil if the queue is empty or stopped.
func (q *Queue[T]) Flush() []T {
	var out []T
	for v := range q.AllTimeout(0) {
		out = append(out, v)
	}
	return out
}

// All iterates over items as they become available, blocking between
// items. The sequence ends when the queue is stopped. Each call opens a
// fresh iteration.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := q.Get()
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// AllTimeout is All with a per-item deadline: the sequence additionally
// ends when any single wait exceeds timeout.
func (q *Queue[T]) AllTimeout(timeout time.Duration) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := q.GetTimeout(timeout)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Stop wakes every blocked consumer and makes all future Get calls return
// ErrStopped. It is idempotent and terminal; Put and the peeks remain
// legal afterward, but buffered items are no longer delivered.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	q.cond.Broadcast()
	q.logger.Debug("queue stopped", slog.Int("pending", len(q.items)))
}

// Stopped reports whether Stop has been called.
func (q *Queue[T]) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue has no buffered items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

func (q *Queue[T]) popOldestLocked() T {
	v := q.items[0]
	var zero T
	q.items[0] = zero // release the reference for GC
	q.items = q.items[1:]
	return v
}
