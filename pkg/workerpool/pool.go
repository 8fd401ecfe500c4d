package workerpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

type options struct {
	maxConcurrency  int
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// Option configures a Pool.
type Option func(*options)

// WithMaxConcurrency bounds the number of tasks running at once.
// Defaults to runtime.NumCPU(). Values less than one are ignored.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithShutdownTimeout sets how long Shutdown waits for in-flight tasks
// to drain. Default is 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithLogger configures structured logging for the pool.
// Logging is disabled by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Pool executes submitted functions with bounded concurrency and returns
// a Task handle per submission. Submit never blocks: submissions beyond
// the concurrency bound park until a slot frees up. Panics inside task
// functions are recovered, logged, and surfaced on the task handle.
//
// The pool does not guarantee that tasks start in submission order; tasks
// parked on the concurrency bound acquire slots in unspecified order.
//
// Example:
//
//	pool := workerpool.New(workerpool.WithMaxConcurrency(8))
//	defer pool.Shutdown(context.Background())
//
//	task, err := pool.Submit(func(ctx context.Context) error {
//		return process(ctx, item)
//	})
//	if err != nil {
//		return err
//	}
//	if err := task.Wait(); err != nil {
//		log.Printf("task failed: %v", err)
//	}
type Pool struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc

	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// New creates a pool. Tasks receive a context that is cancelled when
// Shutdown returns.
func New(opts ...Option) *Pool {
	o := &options{
		maxConcurrency:  runtime.NumCPU(),
		shutdownTimeout: 30 * time.Second,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:             make(chan struct{}, o.maxConcurrency),
		ctx:             ctx,
		cancel:          cancel,
		shutdownTimeout: o.shutdownTimeout,
		logger:          o.logger,
	}
}

// Submit schedules fn for execution and returns its Task handle without
// waiting. Returns ErrNilFunc for a nil fn and ErrPoolClosed once
// Shutdown has been called.
func (p *Pool) Submit(fn func(context.Context) error) (*Task, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	// The closed check and the WaitGroup increment must be atomic with
	// respect to Shutdown, otherwise Shutdown could wait on an incomplete
	// count.
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	t := newTask()
	go func() {
		defer p.wg.Done()

		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		t.complete(p.run(fn))
	}()
	return t, nil
}

func (p *Pool) run(fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			p.logger.Error("recovered panic in task", slog.Any("panic", r))
		}
	}()
	return fn(p.ctx)
}

// Shutdown stops intake and waits for in-flight tasks to drain, up to the
// pool's shutdown timeout or ctx, whichever ends first. The pool context
// handed to tasks is cancelled when Shutdown returns. Calling Shutdown
// again returns ErrPoolClosed.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.closed = true
	p.mu.Unlock()

	defer p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(p.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		p.logger.Info("pool shut down")
		return nil
	case <-timer.C:
		p.logger.Warn("pool shutdown timed out with tasks in flight",
			slog.Duration("timeout", p.shutdownTimeout))
		return ErrShutdownTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed reports whether Shutdown has been called.
func (p *Pool) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}
