package wire

import (
	"sync/atomic"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// requireNotStarted panics if the wire has already been started.
func (w *Wire[T]) requireNotStarted(action string) {
	if atomic.LoadInt32(&w.started) == 1 {
		panic("wire: " + action + " called after Start")
	}
}

// ConnectLogger registers loggers for the wire.
// Panics if called after Start.
func (w *Wire[T]) ConnectLogger(loggers ...types.Logger) {
	w.requireNotStarted("ConnectLogger")

	n := 0
	w.loggersLock.Lock()
	for _, l := range loggers {
		if l != nil {
			w.loggers = append(w.loggers, l)
			n++
		}
	}
	w.loggersLock.Unlock()
	if n == 0 {
		return
	}
	atomic.AddInt32(&w.loggerCount, int32(n))

	w.NotifyLoggers(
		types.DebugLevel,
		"ConnectLogger",
		"component", w.componentMetadata,
		"event", "ConnectLogger",
		"result", "SUCCESS",
		"loggers", n,
	)
}

// ConnectSensor registers sensors for the wire.
// Panics if called after Start.
func (w *Wire[T]) ConnectSensor(sensors ...types.Sensor[T]) {
	w.requireNotStarted("ConnectSensor")

	n := 0
	w.sensorLock.Lock()
	for _, s := range sensors {
		if s != nil {
			w.sensors = append(w.sensors, s)
			n++
		}
	}
	w.sensorLock.Unlock()
	if n == 0 {
		return
	}
	atomic.AddInt32(&w.sensorCount, int32(n))

	for _, s := range sensors {
		if s == nil {
			continue
		}
		w.NotifyLoggers(
			types.DebugLevel,
			"ConnectSensor",
			"component", w.componentMetadata,
			"event", "ConnectSensor",
			"result", "SUCCESS",
			"sensorComponentMetadata", s.GetComponentMetadata(),
		)
	}
}

// ConnectTransformer appends transformers to the chain.
// Panics if called after Start.
func (w *Wire[T]) ConnectTransformer(transformations ...types.Transformer[T]) {
	w.requireNotStarted("ConnectTransformer")

	for _, tf := range transformations {
		if tf != nil {
			w.transformations = append(w.transformations, tf)
		}
	}
}

// SetComponentMetadata sets the name and, when non-empty, the ID.
// Panics if called after Start.
func (w *Wire[T]) SetComponentMetadata(name string, id string) {
	w.requireNotStarted("SetComponentMetadata")

	w.componentMetadata.Name = name
	if id != "" {
		w.componentMetadata.ID = id
	}
}

// SetConcurrencyControl resizes the buffers and the worker pool.
// Panics if called after Start.
func (w *Wire[T]) SetConcurrencyControl(bufferSize int, maxRoutines int) {
	w.requireNotStarted("SetConcurrencyControl")

	if bufferSize < 0 {
		bufferSize = 0
	}
	if maxRoutines < 1 {
		maxRoutines = 1
	}
	w.maxBufferSize = bufferSize
	w.maxConcurrency = maxRoutines
	if w.inChan != nil {
		w.allocateChannels()
	}
}
