package fanout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/flowkit/pkg/workerpool"
)

// Callback is invoked asynchronously with each value written under the
// key it is registered for. The context is the executor's run context.
// A returned error (or a panic) is logged and reported on the task handle
// for that invocation; it never reaches the writer or other callbacks.
type Callback[V any] func(ctx context.Context, value V) error

// Executor runs submitted functions asynchronously and returns a handle
// per submission. Satisfied by *workerpool.Pool. The executor is owned by
// the caller; the store submits tasks to it but never shuts it down.
type Executor interface {
	Submit(fn func(context.Context) error) (*workerpool.Task, error)
}

type options struct {
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*options)

// WithLogger configures structured logging for callback failures and
// dropped dispatches. Logging is disabled by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type registration[V any] struct {
	id string
	fn Callback[V]
}

// Store maps keys to registered callbacks and to a cached per-key Writer.
// When a writer writes a value, the store snapshots the callbacks
// registered for that key and submits one executor task per callback,
// returning the task handles to the writer without waiting.
//
// Example:
//
//	pool := workerpool.New()
//	store, _ := fanout.New[string, int](pool)
//
//	id := store.AddCallback("metrics", func(ctx context.Context, v int) error {
//		return record(v)
//	})
//
//	w := store.Writer("metrics")
//	tasks := w.Write(42)
//	workerpool.WaitAll(tasks...)
//
//	store.RemoveCallback(id)
type Store[K comparable, V any] struct {
	exec   Executor
	logger *slog.Logger

	mu        sync.Mutex
	writers   map[K]*Writer[K, V]
	callbacks map[K]map[string]Callback[V]
	keysByID  map[string]K
}

// New creates a store that dispatches callbacks on exec.
// Returns ErrNilExecutor if exec is nil.
func New[K comparable, V any](exec Executor, opts ...Option) (*Store[K, V], error) {
	if exec == nil {
		return nil, ErrNilExecutor
	}

	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Store[K, V]{
		exec:      exec,
		logger:    o.logger,
		writers:   make(map[K]*Writer[K, V]),
		callbacks: make(map[K]map[string]Callback[V]),
		keysByID:  make(map[string]K),
	}, nil
}

// AddCallback registers fn to be invoked with every value written under
// key from this point on. Returns an id for the callback, used to remove
// it later with RemoveCallback. Duplicate functions are independent
// registrations; there is no limit per key.
func (s *Store[K, V]) AddCallback(key K, fn Callback[V]) string {
	id := fmt.Sprintf("%v::%s", key, uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.callbacks[key] == nil {
		s.callbacks[key] = make(map[string]Callback[V])
	}
	s.callbacks[key][id] = fn
	s.keysByID[id] = key
	return id
}

// RemoveCallback unregisters the callback with the given id. Once it
// returns, no future write dispatches to that callback; invocations
// already submitted still run to completion.
//
// Returns ErrUnknownCallback if the id is not registered. Removal is
// deliberately not idempotent, so double removal surfaces as an error.
func (s *Store[K, V]) RemoveCallback(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keysByID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCallback, id)
	}
	delete(s.keysByID, id)
	delete(s.callbacks[key], id)
	if len(s.callbacks[key]) == 0 {
		delete(s.callbacks, key)
	}
	return nil
}

// Writer returns the writer for key, creating it on first call. Every
// call for the same key returns the identical instance; callers sharing
// a key share a writer.
func (s *Store[K, V]) Writer(key K) *Writer[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.writers[key]; ok {
		return w
	}
	w := &Writer[K, V]{key: key, store: s}
	s.writers[key] = w
	return w
}

// snapshot returns the callbacks registered for key at one instant.
func (s *Store[K, V]) snapshot(key K) []registration[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	regs := make([]registration[V], 0, len(s.callbacks[key]))
	for id, fn := range s.callbacks[key] {
		regs = append(regs, registration[V]{id: id, fn: fn})
	}
	return regs
}

// invoke wraps a callback invocation with panic recovery and failure
// logging at the task boundary.
func (s *Store[K, V]) invoke(key K, reg registration[V], value V) func(context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
			}
			if err != nil {
				s.logger.Error("callback failed",
					slog.Any("key", key),
					slog.String("callback_id", reg.id),
					slog.String("error", err.Error()))
			}
		}()
		return reg.fn(ctx, value)
	}
}
