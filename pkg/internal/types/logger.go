package types

// LogLevel orders log severities; a logger emits entries at or above its level.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	DPanicLevel // error in production, panic in development
	PanicLevel
	FatalLevel
)

// SinkType names an output a logger can fan out to.
type SinkType string

const (
	FileSink   SinkType = "file"
	StdoutSink SinkType = "stdout"
	StderrSink SinkType = "stderr"
)

// SinkConfig describes an extra logger output. File sinks read "path" and "format" from Config.
type SinkConfig struct {
	Type   string
	Config map[string]interface{}
}

// SinkManager adds and removes named outputs on a running logger.
type SinkManager interface {
	AddSink(identifier string, config SinkConfig) error
	RemoveSink(identifier string) error
	ListSinks() ([]string, error)
}

// Logger is the structured logger every component holds. Components never talk to zap
// directly; they keep a slice of Loggers and fan each event out with alternating keys and
// values, skipping loggers whose level is above the event.
type Logger interface {
	SinkManager

	GetLevel() LogLevel
	SetLevel(LogLevel)
	Flush() error

	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	DPanic(msg string, keysAndValues ...interface{})
	Panic(msg string, keysAndValues ...interface{})
	Fatal(msg string, keysAndValues ...interface{})
}
