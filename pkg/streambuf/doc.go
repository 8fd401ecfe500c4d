// Package streambuf buffers a live stream of items on a background
// goroutine, to be flushed on demand. It composes an evicting queue
// (pkg/evictq) with a cooperatively stoppable runner (pkg/runner): the
// collector drains a source sequence into the queue, evicting the oldest
// items when bounded, and the caller flushes, peeks, or pops at its own
// pace. Stopping the collector does not discard buffered data.
package streambuf
