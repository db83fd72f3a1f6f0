package sensor

import (
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// Callbacks are copied under the lock and invoked outside it so a callback may register
// further callbacks without deadlocking.

func (s *Sensor[T]) InvokeOnStart(c types.ComponentMetadata) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata){}, s.OnStart...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(c)
	}
	s.NotifyLoggers(types.DebugLevel, "OnStart", "component", s.componentMetadata, "event", "OnStart", "target", c)
}

func (s *Sensor[T]) InvokeOnSubmit(c types.ComponentMetadata, elem T) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, T){}, s.OnSubmit...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(c, elem)
	}
}

func (s *Sensor[T]) InvokeOnElementProcessed(c types.ComponentMetadata, elem T) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, T){}, s.OnElementProcessed...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(c, elem)
	}
}

func (s *Sensor[T]) InvokeOnError(c types.ComponentMetadata, err error, elem T) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, error, T){}, s.OnError...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(c, err, elem)
	}
	s.NotifyLoggers(types.DebugLevel, "OnError", "component", s.componentMetadata, "event", "OnError", "target", c, "error", err)
}

func (s *Sensor[T]) InvokeOnComplete(c types.ComponentMetadata) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata){}, s.OnComplete...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(c)
	}
	s.NotifyLoggers(types.DebugLevel, "OnComplete", "component", s.componentMetadata, "event", "OnComplete", "target", c)
}

// NotifyLoggers forwards a message to every connected logger enabled for level.
func (s *Sensor[T]) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	s.loggersLock.Lock()
	loggers := append([]types.Logger{}, s.loggers...)
	s.loggersLock.Unlock()

	for _, logger := range loggers {
		if logger.GetLevel() > level {
			continue
		}
		switch level {
		case types.DebugLevel:
			logger.Debug(msg, keysAndValues...)
		case types.InfoLevel:
			logger.Info(msg, keysAndValues...)
		case types.WarnLevel:
			logger.Warn(msg, keysAndValues...)
		case types.ErrorLevel:
			logger.Error(msg, keysAndValues...)
		default:
			logger.Error(msg, keysAndValues...)
		}
	}
}
