package builder

import (
	"io"

	internalLogger "github.com/joeydtaylor/tremor/pkg/internal/internallogger"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/logschema"
)

type LoggerOption = internalLogger.LoggerOption

type SinkConfig = types.SinkConfig

type SinkType = types.SinkType

type LogLevel = types.LogLevel

const (
	FileSink   = types.FileSink
	StdoutSink = types.StdoutSink
	StderrSink = types.StderrSink
)

const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
)

// Log schema identifiers stamped on every line.
const (
	LogSchemaID    = logschema.SchemaID
	LogSchemaField = logschema.FieldSchema
)

// NewLogger returns a JSON logger on stdout at info level unless options say otherwise.
func NewLogger(options ...LoggerOption) types.Logger {
	return internalLogger.NewLogger(options...)
}

// NewFileLogger logs to stdout and appends JSON lines to path.
func NewFileLogger(path string, options ...LoggerOption) (types.Logger, error) {
	l := internalLogger.NewLogger(options...)
	if err := l.AddSink("file", SinkConfig{Type: string(FileSink), Config: map[string]interface{}{"path": path}}); err != nil {
		return nil, err
	}
	return l, nil
}

func LoggerWithLevel(levelStr string) LoggerOption { return internalLogger.LoggerWithLevel(levelStr) }

func LoggerWithDevelopment(dev bool) LoggerOption { return internalLogger.LoggerWithDevelopment(dev) }

func LoggerWithConsole(console bool) LoggerOption { return internalLogger.LoggerWithConsole(console) }

func LoggerWithRunID(id string) LoggerOption { return internalLogger.LoggerWithRunID(id) }

func LoggerWithOutput(w io.Writer) LoggerOption { return internalLogger.LoggerWithOutput(w) }

// LoggerWithFields attaches fields to every log line.
func LoggerWithFields(fields map[string]interface{}) LoggerOption {
	return internalLogger.LoggerWithFields(fields)
}

// LoggerWithSchema overrides the log schema identifier field.
func LoggerWithSchema(schema string) LoggerOption {
	return internalLogger.LoggerWithSchema(schema)
}
