package fanout

import (
	"log/slog"

	"github.com/dmitrymomot/flowkit/pkg/workerpool"
)

// Writer is the exclusive write handle for one key of a Store. It is
// created via Store.Writer, never directly, and lives as long as the
// store.
type Writer[K comparable, V any] struct {
	key   K
	store *Store[K, V]
}

// Key returns the key this writer dispatches under.
func (w *Writer[K, V]) Key() K {
	return w.key
}

// Write submits one executor task per callback currently registered for
// the writer's key, each invoked with value, and returns the task handles
// without waiting for completion. The dispatch set is an atomic snapshot
// of the registry taken at call time.
//
// Write never blocks and callback failures never reach it; callers that
// need completion semantics wait on the returned handles. A submission
// rejected by the executor (closed pool) is logged and skipped.
func (w *Writer[K, V]) Write(value V) []*workerpool.Task {
	regs := w.store.snapshot(w.key)

	tasks := make([]*workerpool.Task, 0, len(regs))
	for _, reg := range regs {
		task, err := w.store.exec.Submit(w.store.invoke(w.key, reg, value))
		if err != nil {
			w.store.logger.Warn("dropped callback dispatch",
				slog.Any("key", w.key),
				slog.String("callback_id", reg.id),
				slog.String("error", err.Error()))
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}
