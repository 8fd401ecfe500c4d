// Package runner provides a cooperatively stoppable unit of execution.
//
// A Runner wraps one goroutine with a cancellation context, a stop
// request that can be issued exactly once, and a Sleep that wakes early
// on stop. It is the run-loop counterpart to the queue and store
// primitives in this module: a typical arrangement runs a producer or
// consumer loop inside a runner and stops it from the outside.
//
//	q := evictq.New[Sample](evictq.WithCapacity(256))
//
//	r := runner.New()
//	r.Go(func(ctx context.Context) error {
//		for r.Running() {
//			q.Put(read())
//			if r.Sleep(250 * time.Millisecond) {
//				break
//			}
//		}
//		q.Stop()
//		return nil
//	})
//
// Stopping is cooperative: the run function must observe its context (or
// poll Running/Sleep); nothing forcibly terminates it. Several runners
// can share a parent context via WithParent and be stopped together by
// cancelling the parent.
package runner
