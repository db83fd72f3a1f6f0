package types

import "context"

// Wire is a concurrent processing stage. Elements submitted to a started wire pass through its
// transformers on a bounded worker pool; each element ends up on exactly one of the output or
// error channels, and a failed element never stops the wire. Configuration methods panic once
// the wire has started.
type Wire[T any] interface {
	// Configuration.
	ConnectLogger(...Logger)
	ConnectSensor(...Sensor[T])
	ConnectTransformer(...Transformer[T])
	SetComponentMetadata(name string, id string)
	SetConcurrencyControl(bufferSize int, maxRoutines int)

	// Lifecycle.
	Start(context.Context) error
	Submit(ctx context.Context, elem T) error // blocks until accepted or ctx is done
	Stop() error                              // drains in-flight work, then closes both channels
	IsStarted() bool

	// Outputs.
	GetOutputChannel() <-chan T
	GetErrorChannel() <-chan ElementError[T]

	GetComponentMetadata() ComponentMetadata
	NotifyLoggers(level LogLevel, msg string, keysAndValues ...interface{})
}
