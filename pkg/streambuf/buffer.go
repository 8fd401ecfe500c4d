package streambuf

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/dmitrymomot/flowkit/pkg/evictq"
	"github.com/dmitrymomot/flowkit/pkg/runner"
)

var (
	// ErrNilSource is returned by New when the source sequence is nil.
	ErrNilSource = errors.New("streambuf: source is nil")

	// ErrEmpty is returned by Peek, PeekOldest, and PopOldest when the
	// buffer holds no data.
	ErrEmpty = errors.New("streambuf: buffer is empty")
)

type options struct {
	capacity int
	logger   *slog.Logger
}

// Option configures a Buffer.
type Option func(*options)

// WithCapacity bounds the buffer to n items; older items are evicted when
// the collector outpaces consumption. Unbounded by default.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLogger configures structured logging for the buffer and its
// collector. Logging is disabled by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Buffer collects items from a source sequence on a background goroutine
// into a bounded evicting queue, to be flushed on demand. Collection is
// started with Start and stopped cooperatively with Stop; buffered data
// remains readable after the collector stops.
//
// The stop request is observed between items: a source that blocks inside
// its next step cannot be interrupted, so sources that may block
// indefinitely should bound their own waits.
//
// Example:
//
//	buf, err := streambuf.New(ticks, streambuf.WithCapacity(1000))
//	if err != nil {
//		return err
//	}
//	buf.Start()
//	defer buf.Stop()
//
//	time.Sleep(time.Second)   // collector gathers data meanwhile
//	latest, _ := buf.Peek()   // newest item, still buffered
//	batch := buf.Flush()      // drain everything collected so far
type Buffer[T any] struct {
	src    iter.Seq[T]
	q      *evictq.Queue[T]
	r      *runner.Runner
	logger *slog.Logger
}

// New creates a buffer over src. Returns ErrNilSource if src is nil.
func New[T any](src iter.Seq[T], opts ...Option) (*Buffer[T], error) {
	if src == nil {
		return nil, ErrNilSource
	}

	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Buffer[T]{
		src:    src,
		q:      evictq.New[T](evictq.WithCapacity(o.capacity), evictq.WithLogger(o.logger)),
		r:      runner.New(runner.WithLogger(o.logger)),
		logger: o.logger,
	}, nil
}

// Start launches the collector goroutine. Returns runner.ErrAlreadyStarted
// if called more than once.
func (b *Buffer[T]) Start() error {
	return b.r.Go(func(ctx context.Context) error {
		next, stop := iter.Pull(b.src)
		defer stop()

		for b.r.Running() {
			v, ok := next()
			if !ok {
				b.logger.Debug("source exhausted")
				return nil
			}
			b.q.Put(v)
		}
		return nil
	})
}

// Stop requests the collector to stop. Buffered items remain available to
// Flush, the peeks, and PopOldest. Returns runner.ErrAlreadyStopped on a
// repeated stop request.
func (b *Buffer[T]) Stop() error {
	return b.r.Stop()
}

// Wait blocks until the collector goroutine has returned, either after a
// stop request or because the source was exhausted.
func (b *Buffer[T]) Wait() error {
	return b.r.Wait()
}

// Flush returns all items currently buffered, oldest first, and clears
// the buffer.
func (b *Buffer[T]) Flush() []T {
	return b.q.Flush()
}

// Clear discards all buffered items.
func (b *Buffer[T]) Clear() {
	b.q.Flush()
}

// Peek returns the newest buffered item without removing it.
func (b *Buffer[T]) Peek() (T, error) {
	v, err := b.q.Peek()
	if err != nil {
		var zero T
		return zero, ErrEmpty
	}
	return v, nil
}

// PeekOldest returns the oldest buffered item without removing it.
func (b *Buffer[T]) PeekOldest() (T, error) {
	v, err := b.q.PeekOldest()
	if err != nil {
		var zero T
		return zero, ErrEmpty
	}
	return v, nil
}

// PopOldest removes and returns the oldest buffered item. The buffer is
// appended to at the newest end, so FIFO consumption pops from the oldest
// end only.
func (b *Buffer[T]) PopOldest() (T, error) {
	v, err := b.q.GetTimeout(0)
	if err != nil {
		var zero T
		return zero, ErrEmpty
	}
	return v, nil
}

// Len returns the number of items currently buffered.
func (b *Buffer[T]) Len() int {
	return b.q.Len()
}

// Empty reports whether the buffer holds no items.
func (b *Buffer[T]) Empty() bool {
	return b.q.Empty()
}
