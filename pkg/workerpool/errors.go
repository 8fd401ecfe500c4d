package workerpool

import "errors"

var (
	// ErrPoolClosed is returned by Submit after Shutdown has been called.
	ErrPoolClosed = errors.New("workerpool: pool is closed")

	// ErrNilFunc is returned by Submit when the task function is nil.
	ErrNilFunc = errors.New("workerpool: task function is nil")

	// ErrTaskPanicked wraps a panic recovered from a task function. The
	// panic value is included in the wrapped message.
	ErrTaskPanicked = errors.New("workerpool: task panicked")

	// ErrWaitTimeout is returned by Task.WaitTimeout when the task does not
	// complete before the timeout.
	ErrWaitTimeout = errors.New("workerpool: timed out waiting for task")

	// ErrShutdownTimeout is returned by Shutdown when in-flight tasks do
	// not drain within the shutdown timeout.
	ErrShutdownTimeout = errors.New("workerpool: shutdown timed out")
)
