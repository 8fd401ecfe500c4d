package fanout

import "errors"

var (
	// ErrNilExecutor is returned by New when no executor is provided.
	ErrNilExecutor = errors.New("fanout: executor is nil")

	// ErrUnknownCallback is returned by RemoveCallback when the id is not
	// currently registered (already removed, or never existed).
	ErrUnknownCallback = errors.New("fanout: unknown callback id")

	// ErrCallbackPanic wraps a panic recovered from a callback. It is
	// observable only on the task handle returned by Write.
	ErrCallbackPanic = errors.New("fanout: callback panicked")
)
