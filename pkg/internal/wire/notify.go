package wire

import (
	"sync/atomic"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// loggersCopy and sensorsCopy return snapshots so callbacks never run under a wire lock.
func (w *Wire[T]) loggersCopy() []types.Logger {
	if atomic.LoadInt32(&w.loggerCount) == 0 {
		return nil
	}
	w.loggersLock.Lock()
	defer w.loggersLock.Unlock()
	return append([]types.Logger(nil), w.loggers...)
}

func (w *Wire[T]) sensorsCopy() []types.Sensor[T] {
	if atomic.LoadInt32(&w.sensorCount) == 0 {
		return nil
	}
	w.sensorLock.Lock()
	defer w.sensorLock.Unlock()
	return append([]types.Sensor[T](nil), w.sensors...)
}

func levelFunc(l types.Logger, level types.LogLevel) func(string, ...interface{}) {
	switch level {
	case types.DebugLevel:
		return l.Debug
	case types.WarnLevel:
		return l.Warn
	case types.ErrorLevel:
		return l.Error
	case types.DPanicLevel:
		return l.DPanic
	case types.PanicLevel:
		return l.Panic
	case types.FatalLevel:
		return l.Fatal
	default:
		return l.Info
	}
}

// NotifyLoggers sends msg to every attached logger whose level admits it.
func (w *Wire[T]) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	for _, l := range w.loggersCopy() {
		if l != nil && l.GetLevel() <= level {
			levelFunc(l, level)(msg, keysAndValues...)
		}
	}
}

// event logs a debug line carrying the wire's metadata with the given event and result.
func (w *Wire[T]) event(msg, event, result string, extra ...interface{}) {
	if atomic.LoadInt32(&w.loggerCount) == 0 {
		return
	}
	kv := append([]interface{}{"component", w.componentMetadata, "event", event, "result", result}, extra...)
	w.NotifyLoggers(types.DebugLevel, msg, kv...)
}

func (w *Wire[T]) notifyStart() {
	w.event("Wire started", "Start", "SUCCESS", "workers", w.maxConcurrency, "buffer", w.maxBufferSize)
	for _, s := range w.sensorsCopy() {
		s.InvokeOnStart(w.componentMetadata)
	}
}

func (w *Wire[T]) notifySubmit(elem T) {
	w.event("Element submitted", "Submit", "SUCCESS")
	for _, s := range w.sensorsCopy() {
		s.InvokeOnSubmit(w.componentMetadata, elem)
	}
}

func (w *Wire[T]) notifyElementProcessed(elem T) {
	w.event("Element processed", "ElementProcessed", "SUCCESS")
	for _, s := range w.sensorsCopy() {
		s.InvokeOnElementProcessed(w.componentMetadata, elem)
	}
}

func (w *Wire[T]) notifyElementTransformError(elem T, err error) {
	w.event("Element failed transformation", "Transform", "FAILURE", "error", err)
	for _, s := range w.sensorsCopy() {
		s.InvokeOnError(w.componentMetadata, err, elem)
	}
}

func (w *Wire[T]) notifyComplete() {
	w.event("Wire completed", "Complete", "SUCCESS")
	for _, s := range w.sensorsCopy() {
		s.InvokeOnComplete(w.componentMetadata)
	}
}

// observed reports whether any logger or sensor is attached.
func (w *Wire[T]) observed() bool {
	return atomic.LoadInt32(&w.loggerCount)+atomic.LoadInt32(&w.sensorCount) != 0
}
