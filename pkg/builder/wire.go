package builder

import (
	"context"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/wire"
)

// NewWire creates a bounded worker pool that runs every submitted element through its
// transformers and reports one outcome per element.
func NewWire[T any](ctx context.Context, options ...types.Option[types.Wire[T]]) types.Wire[T] {
	return wire.NewWire[T](ctx, options...)
}

// WireWithComponentMetadata adds component metadata overrides.
func WireWithComponentMetadata[T any](name string, id string) types.Option[types.Wire[T]] {
	return wire.WithComponentMetadata[T](name, id)
}

// WireWithConcurrencyControl sets the channel buffer and worker count for the Wire.
func WireWithConcurrencyControl[T any](bufferSize int, maxRoutines int) types.Option[types.Wire[T]] {
	return wire.WithConcurrencyControl[T](bufferSize, maxRoutines)
}

// WireWithLogger adds one or more loggers to the wire.
func WireWithLogger[T any](logger ...types.Logger) types.Option[types.Wire[T]] {
	return wire.WithLogger[T](logger...)
}

// WireWithSensor adds sensors to the wire to monitor its events.
func WireWithSensor[T any](sensor ...types.Sensor[T]) types.Option[types.Wire[T]] {
	return wire.WithSensor[T](sensor...)
}

// WireWithTransformer adds transformation functions, applied in order.
func WireWithTransformer[T any](transformation ...types.Transformer[T]) types.Option[types.Wire[T]] {
	return wire.WithTransformer[T](transformation...)
}
