package sensor

import (
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// WithLogger adds loggers to a Sensor.
func WithLogger[T any](logger ...types.Logger) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.ConnectLogger(logger...)
	}
}

// WithMeter connects meters that track submitted, processed and skipped elements.
func WithMeter[T any](meter ...types.Meter) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.ConnectMeter(meter...)
	}
}

// WithOnStartFunc registers callbacks for component start.
func WithOnStartFunc[T any](callback ...func(c types.ComponentMetadata)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.RegisterOnStart(callback...)
	}
}

// WithOnSubmitFunc registers callbacks for element submission.
func WithOnSubmitFunc[T any](callback ...func(c types.ComponentMetadata, elem T)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.RegisterOnSubmit(callback...)
	}
}

// WithOnElementProcessedFunc registers callbacks for successfully processed elements.
func WithOnElementProcessedFunc[T any](callback ...func(c types.ComponentMetadata, elem T)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.RegisterOnElementProcessed(callback...)
	}
}

// WithOnErrorFunc registers callbacks for failed elements.
func WithOnErrorFunc[T any](callback ...func(c types.ComponentMetadata, err error, elem T)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.RegisterOnError(callback...)
	}
}

// WithOnCompleteFunc registers callbacks for component completion.
func WithOnCompleteFunc[T any](callback ...func(c types.ComponentMetadata)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.RegisterOnComplete(callback...)
	}
}

// WithComponentMetadata sets the sensor name and ID.
func WithComponentMetadata[T any](name string, id string) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.SetComponentMetadata(name, id)
	}
}
