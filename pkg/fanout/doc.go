// Package fanout provides a keyed callback store that asynchronously
// fans out written values to a dynamic set of subscribers.
//
// A Store maps each key to a set of registered callbacks and to a single
// cached Writer. Writing a value through the writer snapshots the
// callbacks registered for that key and submits one task per callback to
// a caller-provided executor, returning the task handles immediately.
// The writer never blocks and never observes callback failures.
//
// # Usage
//
//	pool := workerpool.New(workerpool.WithMaxConcurrency(4))
//	defer pool.Shutdown(context.Background())
//
//	store, err := fanout.New[string, float64](pool)
//	if err != nil {
//		return err
//	}
//
//	// latest holds the most recent value, history accumulates all of them
//	var latest atomic.Value
//	var history []float64
//	var mu sync.Mutex
//
//	histID := store.AddCallback("temperature", func(ctx context.Context, v float64) error {
//		mu.Lock()
//		defer mu.Unlock()
//		history = append(history, v)
//		return nil
//	})
//	store.AddCallback("temperature", func(ctx context.Context, v float64) error {
//		latest.Store(v)
//		return nil
//	})
//
//	w := store.Writer("temperature")
//	for _, v := range readings {
//		workerpool.WaitAll(w.Write(v)...)
//	}
//
//	store.RemoveCallback(histID)
//	w.Write(21.5) // dispatched only to the remaining callback
//
// # Failure isolation
//
// An error returned by a callback, or a panic raised inside one, is
// caught at the task boundary, logged with the originating key and
// callback id, and reported only on that callback's task handle. One
// failing callback never prevents or corrupts dispatch to any other
// callback for the same write.
//
// # Ordering
//
// Callbacks for a single write run concurrently on the executor with no
// ordering among them. A single callback observes writes for its key in
// write-call order only when the caller serializes writes — by waiting on
// the returned tasks between writes, or by running a single-worker
// executor. Concurrent writers get no cross-write ordering guarantee.
//
// # Concurrency safety
//
// The registry is guarded by a single mutex; registration, removal, and
// the snapshot taken at write time are linearizable. A callback removed
// by id receives no dispatch from writes that start after RemoveCallback
// returns, modulo invocations already in flight.
package fanout
