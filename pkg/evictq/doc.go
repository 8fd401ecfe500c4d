// Package evictq provides a bounded, thread-safe FIFO queue with evicting
// puts and blocking gets.
//
// A producer calls Put, which never blocks and never fails: when the queue
// is at capacity the oldest item is silently dropped to admit the new one.
// Consumers call Get (block indefinitely), GetTimeout (block up to a
// deadline), or iterate with All/AllTimeout. Stop wakes every blocked
// consumer and terminates iteration cooperatively.
//
// # Usage
//
// Blocking consumption, terminated by Stop:
//
//	q := evictq.New[Event](evictq.WithCapacity(128))
//
//	for ev := range q.All() {
//		handle(ev)
//	}
//	cleanup() // reached once q.Stop() is called
//
// Consumption with a per-item timeout:
//
//	for ev := range q.AllTimeout(1500 * time.Millisecond) {
//		// ends after 1.5s elapses without a new item, or on Stop
//		handle(ev)
//	}
//
// Handling timeouts and stop separately:
//
//	for {
//		ev, err := q.GetTimeout(100 * time.Millisecond)
//		switch {
//		case errors.Is(err, evictq.ErrTimeout):
//			handleIdle()
//			continue
//		case errors.Is(err, evictq.ErrStopped):
//			return
//		}
//		handle(ev)
//	}
//
// As a buffer, drained on demand:
//
//	// another goroutine adds items with q.Put
//	for {
//		time.Sleep(time.Second)
//		processBatch(q.Flush())
//	}
//
// # Ordering
//
// Retrieval is strictly FIFO for items that survive eviction; eviction
// only ever removes the oldest item and never reorders the rest.
//
// # Concurrency
//
// All operations are safe for concurrent use by any number of producers
// and consumers. Put and Stop broadcast to all waiters, so no blocked
// consumer is starved when the queue stops.
package evictq
