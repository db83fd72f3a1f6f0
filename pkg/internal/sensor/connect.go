package sensor

import (
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

func (s *Sensor[T]) ConnectLogger(logger ...types.Logger) {
	s.loggersLock.Lock()
	defer s.loggersLock.Unlock()
	for _, l := range logger {
		if l != nil {
			s.loggers = append(s.loggers, l)
		}
	}
}

func (s *Sensor[T]) ConnectMeter(meter ...types.Meter) {
	s.metersLock.Lock()
	defer s.metersLock.Unlock()
	for _, m := range meter {
		if m != nil {
			s.meters = append(s.meters, m)
		}
	}
}

func (s *Sensor[T]) GetComponentMetadata() types.ComponentMetadata {
	return s.componentMetadata
}

func (s *Sensor[T]) SetComponentMetadata(name string, id string) {
	old := s.componentMetadata
	s.componentMetadata.Name = name
	if id != "" {
		s.componentMetadata.ID = id
	}
	s.NotifyLoggers(types.DebugLevel, "Component metadata updated",
		"component", s.componentMetadata,
		"event", "SetComponentMetadata",
		"result", "SUCCESS",
		"old", old,
	)
}

func (s *Sensor[T]) RegisterOnStart(callback ...func(types.ComponentMetadata)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.OnStart = append(s.OnStart, callback...)
}

func (s *Sensor[T]) RegisterOnSubmit(callback ...func(types.ComponentMetadata, T)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.OnSubmit = append(s.OnSubmit, callback...)
}

func (s *Sensor[T]) RegisterOnElementProcessed(callback ...func(types.ComponentMetadata, T)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.OnElementProcessed = append(s.OnElementProcessed, callback...)
}

func (s *Sensor[T]) RegisterOnError(callback ...func(types.ComponentMetadata, error, T)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.OnError = append(s.OnError, callback...)
}

func (s *Sensor[T]) RegisterOnComplete(callback ...func(types.ComponentMetadata)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.OnComplete = append(s.OnComplete, callback...)
}
