package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	// ErrNilFunc is returned by Go when the run function is nil.
	ErrNilFunc = errors.New("runner: run function is nil")

	// ErrAlreadyStarted is returned by Go when the runner is already running.
	ErrAlreadyStarted = errors.New("runner: already started")

	// ErrAlreadyStopped is returned by Stop when a stop was already requested.
	ErrAlreadyStopped = errors.New("runner: already requested to stop")

	// ErrNotStarted is returned by Wait before Go has been called.
	ErrNotStarted = errors.New("runner: not started")
)

type options struct {
	parent context.Context
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*options)

// WithParent derives the runner's context from parent, so cancelling the
// parent stops the runner. Use one parent across several runners to stop
// them together.
func WithParent(parent context.Context) Option {
	return func(o *options) {
		if parent != nil {
			o.parent = parent
		}
	}
}

// WithLogger configures structured logging for the runner.
// Logging is disabled by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Runner executes a function on its own goroutine with cooperative stop
// semantics. The function receives a context cancelled by Stop (or by the
// parent context) and is expected to observe it often, typically via
// Sleep or a select on ctx.Done().
//
// Example:
//
//	r := runner.New()
//	r.Go(func(ctx context.Context) error {
//		for {
//			if r.Sleep(time.Second) {
//				return nil // woken by stop
//			}
//			poll()
//		}
//	})
//
//	// later
//	r.Stop()
//	r.Wait()
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	started atomic.Bool
	stopReq atomic.Bool

	logger *slog.Logger
}

// New creates a runner.
func New(opts ...Option) *Runner {
	o := &options{
		parent: context.Background(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	ctx, cancel := context.WithCancel(o.parent)
	return &Runner{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: o.logger,
	}
}

// Go starts fn on a new goroutine. A runner runs exactly one function;
// calling Go again returns ErrAlreadyStarted.
func (r *Runner) Go(fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilFunc
	}
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	go func() {
		defer close(r.done)
		r.err = fn(r.ctx)
		if r.err != nil {
			r.logger.Error("runner exited with error",
				slog.String("error", r.err.Error()))
		}
	}()
	return nil
}

// Sleep waits for at most d and reports whether it was woken early by a
// stop request. Run loops should prefer it over time.Sleep so shutdown is
// not delayed by a full interval.
func (r *Runner) Sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-r.ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}

// Stop requests the runner to stop by cancelling its context. Returns
// ErrAlreadyStopped if a stop was already requested. Stop does not wait
// for the run function to return; use Wait for that.
func (r *Runner) Stop() error {
	if !r.stopReq.CompareAndSwap(false, true) {
		return ErrAlreadyStopped
	}
	r.cancel()
	return nil
}

// Stopped reports whether the runner has been requested to stop, either
// via Stop or through parent context cancellation.
func (r *Runner) Stopped() bool {
	return r.ctx.Err() != nil
}

// Running reports whether the runner has not been requested to stop.
func (r *Runner) Running() bool {
	return !r.Stopped()
}

// Done returns a channel closed when the run function has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run function returns and reports its error.
// Returns ErrNotStarted if Go has not been called.
func (r *Runner) Wait() error {
	if !r.started.Load() {
		return ErrNotStarted
	}
	<-r.done
	return r.err
}
