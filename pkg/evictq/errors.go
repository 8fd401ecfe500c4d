package evictq

import "errors"

var (
	// ErrTimeout is returned by GetTimeout when the timeout elapses before
	// an item becomes available.
	ErrTimeout = errors.New("evictq: timed out waiting for item")

	// ErrStopped is returned by Get and GetTimeout once the queue has been
	// stopped. It is terminal for the queue instance.
	ErrStopped = errors.New("evictq: queue stopped")

	// ErrEmpty is returned by Peek and PeekOldest when the queue is empty.
	ErrEmpty = errors.New("evictq: queue is empty")
)
