package wire

import (
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// WithConcurrencyControl sets the channel buffer size and the number of workers.
func WithConcurrencyControl[T any](bufferSize int, maxRoutines int) types.Option[types.Wire[T]] {
	return func(w types.Wire[T]) {
		w.SetConcurrencyControl(bufferSize, maxRoutines)
	}
}

// WithLogger attaches loggers to the wire.
func WithLogger[T any](logger ...types.Logger) types.Option[types.Wire[T]] {
	return func(w types.Wire[T]) {
		w.ConnectLogger(logger...)
	}
}

// WithSensor attaches sensors to the wire.
func WithSensor[T any](sensor ...types.Sensor[T]) types.Option[types.Wire[T]] {
	return func(w types.Wire[T]) {
		w.ConnectSensor(sensor...)
	}
}

// WithTransformer appends transformers to the wire's chain. They run in order.
func WithTransformer[T any](transformation ...types.Transformer[T]) types.Option[types.Wire[T]] {
	return func(w types.Wire[T]) {
		w.ConnectTransformer(transformation...)
	}
}

// WithComponentMetadata sets the wire name and, when non-empty, its ID.
func WithComponentMetadata[T any](name string, id string) types.Option[types.Wire[T]] {
	return func(w types.Wire[T]) {
		w.SetComponentMetadata(name, id)
	}
}
