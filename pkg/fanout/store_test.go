package fanout_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flowkit/pkg/fanout"
	"github.com/dmitrymomot/flowkit/pkg/workerpool"
)

// recorder accumulates callback values in arrival order.
type recorder struct {
	mu   sync.Mutex
	vals []any
}

func (r *recorder) callback(_ context.Context, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vals = append(r.vals, v)
	return nil
}

func (r *recorder) values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.vals...)
}

// testLogHandler captures log entries for testing.
type testLogHandler struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (h *testLogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *testLogHandler) Handle(_ context.Context, rec slog.Record) error {
	entry := map[string]any{"level": rec.Level.String(), "msg": rec.Message}
	rec.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

func (h *testLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *testLogHandler) WithGroup(string) slog.Handler      { return h }

func (h *testLogHandler) all() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]any(nil), h.entries...)
}

func newTestStore(t *testing.T, opts ...fanout.Option) *fanout.Store[string, any] {
	t.Helper()

	pool := workerpool.New()
	t.Cleanup(func() { pool.Shutdown(context.Background()) })

	store, err := fanout.New[string, any](pool, opts...)
	require.NoError(t, err)
	return store
}

func TestNewRequiresExecutor(t *testing.T) {
	t.Parallel()

	_, err := fanout.New[string, any](nil)
	assert.ErrorIs(t, err, fanout.ErrNilExecutor)
}

func TestWriterIdentity(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	w1 := store.Writer("k")
	w2 := store.Writer("k")
	assert.Same(t, w1, w2)
	assert.Equal(t, "k", w1.Key())

	other := store.Writer("other")
	assert.NotSame(t, w1, other)
}

func TestWriteDispatchesToAllCallbacksInOrder(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	var first, second recorder
	store.AddCallback("k", first.callback)
	store.AddCallback("k", second.callback)

	w := store.Writer("k")
	require.NoError(t, workerpool.WaitAll(w.Write(1)...))
	require.NoError(t, workerpool.WaitAll(w.Write("2")...))

	assert.Equal(t, []any{1, "2"}, first.values())
	assert.Equal(t, []any{1, "2"}, second.values())
}

func TestRemoveCallbackStopsFutureDispatch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	var removed, kept recorder
	id := store.AddCallback("k", removed.callback)
	store.AddCallback("k", kept.callback)

	w := store.Writer("k")
	require.NoError(t, workerpool.WaitAll(w.Write(1)...))
	require.NoError(t, store.RemoveCallback(id))
	require.NoError(t, workerpool.WaitAll(w.Write("2")...))

	assert.Equal(t, []any{1}, removed.values())
	assert.Equal(t, []any{1, "2"}, kept.values())
}

func TestRemoveCallbackTwice(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	id := store.AddCallback("k", func(context.Context, any) error { return nil })
	require.NoError(t, store.RemoveCallback(id))
	assert.ErrorIs(t, store.RemoveCallback(id), fanout.ErrUnknownCallback)
}

func TestRemoveUnknownCallback(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	assert.ErrorIs(t, store.RemoveCallback("never-registered"), fanout.ErrUnknownCallback)
}

func TestFailingCallbackDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	wantErr := errors.New("always fails")
	store.AddCallback("k", func(context.Context, any) error { return wantErr })

	var healthy recorder
	store.AddCallback("k", healthy.callback)

	tasks := store.Writer("k").Write(1)
	require.Len(t, tasks, 2)

	// Exactly one task fails, and the healthy callback still sees the value.
	var failures int
	for _, task := range tasks {
		if err := task.Wait(); err != nil {
			require.ErrorIs(t, err, wantErr)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, []any{1}, healthy.values())
}

func TestPanickingCallbackIsIsolated(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	store.AddCallback("k", func(context.Context, any) error { panic("callback bug") })

	var healthy recorder
	store.AddCallback("k", healthy.callback)

	tasks := store.Writer("k").Write("v")

	var panicked int
	for _, task := range tasks {
		if err := task.Wait(); err != nil {
			require.ErrorIs(t, err, fanout.ErrCallbackPanic)
			panicked++
		}
	}
	assert.Equal(t, 1, panicked)
	assert.Equal(t, []any{"v"}, healthy.values())
}

func TestCallbackFailureIsLoggedWithKey(t *testing.T) {
	t.Parallel()

	logs := &testLogHandler{}
	store := newTestStore(t, fanout.WithLogger(slog.New(logs)))

	id := store.AddCallback("sensor", func(context.Context, any) error {
		return errors.New("sensor decode failed")
	})

	require.Error(t, workerpool.WaitAll(store.Writer("sensor").Write(1)...))

	var found bool
	for _, entry := range logs.all() {
		if entry["msg"] == "callback failed" {
			assert.Equal(t, "sensor", entry["key"])
			assert.Equal(t, id, entry["callback_id"])
			found = true
		}
	}
	assert.True(t, found, "callback failure was not logged")
}

func TestWriteWithoutCallbacks(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	assert.Empty(t, store.Writer("k").Write(1))
}

func TestWriteAfterExecutorShutdown(t *testing.T) {
	t.Parallel()

	pool := workerpool.New()
	store, err := fanout.New[string, int](pool)
	require.NoError(t, err)

	store.AddCallback("k", func(context.Context, int) error { return nil })
	require.NoError(t, pool.Shutdown(context.Background()))

	// Dispatch is dropped and logged, never an error to the writer.
	assert.Empty(t, store.Writer("k").Write(1))
}

func TestDuplicateFunctionsAreIndependent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	var rec recorder
	id1 := store.AddCallback("k", rec.callback)
	id2 := store.AddCallback("k", rec.callback)
	require.NotEqual(t, id1, id2)

	require.NoError(t, workerpool.WaitAll(store.Writer("k").Write(1)...))
	assert.Equal(t, []any{1, 1}, rec.values())

	require.NoError(t, store.RemoveCallback(id1))
	require.NoError(t, workerpool.WaitAll(store.Writer("k").Write(2)...))
	assert.Equal(t, []any{1, 1, 2}, rec.values())
}

func TestConcurrentRegistrationIDsAreUnique(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	const n = 100
	ids := make(chan string, n)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- store.AddCallback("k", func(context.Context, any) error { return nil })
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		require.False(t, seen[id], "duplicate callback id %q", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestConcurrentWritesAndMutations(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	w := store.Writer("k")

	var rec recorder
	store.AddCallback("k", rec.callback)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 50 {
			id := store.AddCallback("k", func(context.Context, any) error { return nil })
			_ = store.RemoveCallback(id)
		}
	}()

	var tasks []*workerpool.Task
	for i := range 50 {
		tasks = append(tasks, w.Write(i)...)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("registration churn did not finish")
	}

	require.NoError(t, workerpool.WaitAll(tasks...))
	// The persistent callback sees every write regardless of churn.
	assert.Len(t, rec.values(), 50)
}
