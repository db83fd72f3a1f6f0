package wire

import (
	"sync/atomic"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// GetComponentMetadata returns the wire metadata.
func (w *Wire[T]) GetComponentMetadata() types.ComponentMetadata {
	return w.componentMetadata
}

// GetOutputChannel returns the channel successes are emitted on.
func (w *Wire[T]) GetOutputChannel() <-chan T {
	return w.outputChan
}

// GetErrorChannel returns the channel failures are emitted on.
func (w *Wire[T]) GetErrorChannel() <-chan types.ElementError[T] {
	return w.errorChan
}

// IsStarted reports whether the wire is running.
func (w *Wire[T]) IsStarted() bool {
	return atomic.LoadInt32(&w.started) == 1
}
