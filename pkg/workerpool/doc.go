// Package workerpool provides a bounded task executor with per-task
// completion handles.
//
// Submit schedules a function for execution and immediately returns a
// Task, a future-like handle supporting Wait, WaitTimeout, Done, and
// Completed. Concurrency is bounded by the pool's semaphore; submissions
// beyond the bound park until a slot frees up, so Submit itself never
// blocks.
//
// # Usage
//
//	pool := workerpool.New(
//		workerpool.WithMaxConcurrency(8),
//		workerpool.WithShutdownTimeout(10*time.Second),
//	)
//	defer pool.Shutdown(context.Background())
//
//	var tasks []*workerpool.Task
//	for _, item := range items {
//		task, err := pool.Submit(func(ctx context.Context) error {
//			return process(ctx, item)
//		})
//		if err != nil {
//			break // pool closed
//		}
//		tasks = append(tasks, task)
//	}
//
//	if err := workerpool.WaitAll(tasks...); err != nil {
//		log.Printf("batch failed: %v", err)
//	}
//
// # Failure isolation
//
// A panic inside a task function is recovered at the task boundary,
// logged, and reported on the handle as an error wrapping ErrTaskPanicked.
// It never affects other tasks or the pool itself.
//
// # Lifecycle
//
// Shutdown stops intake (subsequent Submit calls return ErrPoolClosed)
// and waits for in-flight tasks up to the shutdown timeout. The context
// passed to task functions is cancelled when Shutdown returns; tasks
// already parked on the concurrency bound still run, observing the
// cancelled context.
//
// # Concurrency safety
//
// All operations are safe for concurrent use. Tasks complete exactly once
// via sync.Once, so Wait is race-free however many goroutines call it.
package workerpool
