package workerpool

import (
	"sync"
	"time"
)

// Task represents the pending result of a submitted function. It completes
// exactly once, with the function's returned error or with a recovered
// panic wrapped in ErrTaskPanicked.
type Task struct {
	err  error
	once sync.Once
	done chan struct{}
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) complete(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

// Wait blocks until the task completes and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// WaitTimeout waits for the task to complete with a timeout.
// Returns the task's error if it completes before the timeout,
// ErrWaitTimeout otherwise.
func (t *Task) WaitTimeout(timeout time.Duration) error {
	select {
	case <-t.done:
		return t.err
	case <-time.After(timeout):
		return ErrWaitTimeout
	}
}

// Done returns a channel that is closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Completed checks whether the task has completed, without blocking.
func (t *Task) Completed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// WaitAll waits for all tasks to complete and returns the first error
// encountered, in argument order.
func WaitAll(tasks ...*Task) error {
	for _, t := range tasks {
		if err := t.Wait(); err != nil {
			return err
		}
	}
	return nil
}
