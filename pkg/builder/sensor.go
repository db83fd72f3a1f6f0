package builder

import (
	"github.com/joeydtaylor/tremor/pkg/internal/sensor"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// NewSensor creates a sensor that forwards wire events to callbacks and meters.
func NewSensor[T any](options ...types.Option[types.Sensor[T]]) types.Sensor[T] {
	return sensor.NewSensor[T](options...)
}

// SensorWithComponentMetadata adds component metadata overrides.
func SensorWithComponentMetadata[T any](name string, id string) types.Option[types.Sensor[T]] {
	return sensor.WithComponentMetadata[T](name, id)
}

// SensorWithLogger adds a logger to the Sensor.
func SensorWithLogger[T any](logger ...types.Logger) types.Option[types.Sensor[T]] {
	return sensor.WithLogger[T](logger...)
}

// SensorWithMeter connects meters that count submitted, processed and skipped elements.
func SensorWithMeter[T any](m ...types.Meter) types.Option[types.Sensor[T]] {
	return sensor.WithMeter[T](m...)
}

// SensorWithOnStartFunc registers a callback for the OnStart event.
func SensorWithOnStartFunc[T any](callback ...func(c ComponentMetadata)) types.Option[types.Sensor[T]] {
	return sensor.WithOnStartFunc[T](callback...)
}

// SensorWithOnSubmitFunc registers a callback for the OnSubmit event.
func SensorWithOnSubmitFunc[T any](callback ...func(c ComponentMetadata, elem T)) types.Option[types.Sensor[T]] {
	return sensor.WithOnSubmitFunc[T](callback...)
}

// SensorWithOnElementProcessedFunc registers a callback for the OnElementProcessed event.
func SensorWithOnElementProcessedFunc[T any](callback ...func(c ComponentMetadata, elem T)) types.Option[types.Sensor[T]] {
	return sensor.WithOnElementProcessedFunc[T](callback...)
}

// SensorWithOnErrorFunc registers a callback for the OnError event.
func SensorWithOnErrorFunc[T any](callback ...func(c ComponentMetadata, err error, elem T)) types.Option[types.Sensor[T]] {
	return sensor.WithOnErrorFunc[T](callback...)
}

// SensorWithOnCompleteFunc registers a callback for the OnComplete event.
func SensorWithOnCompleteFunc[T any](callback ...func(c ComponentMetadata)) types.Option[types.Sensor[T]] {
	return sensor.WithOnCompleteFunc[T](callback...)
}
