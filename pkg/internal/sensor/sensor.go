// Package sensor provides callback hooks that components invoke as elements move through
// them. A sensor can also drive meters: submissions, processed elements and failures are
// counted on every connected meter without the component knowing about metering.
package sensor

import (
	"sync"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// Sensor provides callback hooks for component telemetry.
type Sensor[T any] struct {
	componentMetadata types.ComponentMetadata

	OnStart            []func(types.ComponentMetadata)
	OnSubmit           []func(types.ComponentMetadata, T)
	OnElementProcessed []func(types.ComponentMetadata, T)
	OnError            []func(types.ComponentMetadata, error, T)
	OnComplete         []func(types.ComponentMetadata)

	callbackLock sync.Mutex
	loggers      []types.Logger
	loggersLock  sync.Mutex
	meters       []types.Meter
	metersLock   sync.Mutex
}

// NewSensor constructs a Sensor with optional configuration.
func NewSensor[T any](options ...types.Option[types.Sensor[T]]) types.Sensor[T] {
	s := &Sensor[T]{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "SENSOR",
		},
	}

	for _, opt := range s.decorateCallbacks(options...) {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// decorateCallbacks appends the meter-driving callbacks after the caller's options.
func (s *Sensor[T]) decorateCallbacks(options ...types.Option[types.Sensor[T]]) []types.Option[types.Sensor[T]] {
	return append(options,
		WithOnSubmitFunc[T](func(types.ComponentMetadata, T) {
			s.addMeter(types.MetricSubmitted, 1)
		}),
		WithOnElementProcessedFunc[T](func(types.ComponentMetadata, T) {
			s.addMeter(types.MetricProcessed, 1)
		}),
		WithOnErrorFunc[T](func(c types.ComponentMetadata, err error, _ T) {
			kind := types.ReadFailure
			if se := types.AsSkip("", err); se != nil {
				kind = se.Kind
			}
			for _, m := range s.snapshotMeters() {
				m.RecordSkip(kind)
			}
		}),
	)
}

func (s *Sensor[T]) addMeter(metric string, delta int) {
	for _, m := range s.snapshotMeters() {
		m.Add(metric, delta)
	}
}

func (s *Sensor[T]) snapshotMeters() []types.Meter {
	s.metersLock.Lock()
	defer s.metersLock.Unlock()
	out := make([]types.Meter, len(s.meters))
	copy(out, s.meters)
	return out
}
