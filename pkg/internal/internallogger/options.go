package internallogger

import (
	"io"

	"github.com/joeydtaylor/tremor/pkg/logschema"
)

// LoggerWithLevel sets the minimum level from its name ("debug", "info", ...).
// Unknown names fall back to info.
func LoggerWithLevel(levelStr string) LoggerOption {
	return func(cfg *loggerConfig) {
		cfg.level = ConvertLevel(parseLogLevel(levelStr))
	}
}

// LoggerWithDevelopment switches to capitalised level names.
func LoggerWithDevelopment(dev bool) LoggerOption {
	return func(cfg *loggerConfig) {
		cfg.development = dev
	}
}

// LoggerWithConsole writes the base output in zap's console format instead of JSON.
func LoggerWithConsole(console bool) LoggerOption {
	return func(cfg *loggerConfig) {
		cfg.console = console
	}
}

// LoggerWithFields attaches fields to every log line.
func LoggerWithFields(fields map[string]interface{}) LoggerOption {
	return func(cfg *loggerConfig) {
		for key, value := range fields {
			if key != "" {
				cfg.fields[key] = value
			}
		}
	}
}

// LoggerWithRunID stamps every line with the run identifier.
func LoggerWithRunID(id string) LoggerOption {
	return func(cfg *loggerConfig) {
		if id != "" {
			cfg.fields[logschema.FieldRunID] = id
		}
	}
}

// LoggerWithSchema overrides the log schema identifier field.
func LoggerWithSchema(schema string) LoggerOption {
	return func(cfg *loggerConfig) {
		cfg.fields[logschema.FieldSchema] = schema
	}
}

// LoggerWithOutput redirects the base output.
func LoggerWithOutput(w io.Writer) LoggerOption {
	return func(cfg *loggerConfig) {
		if w != nil {
			cfg.output = w
		}
	}
}

// LoggerWithCallerSkip skips additional caller frames.
func LoggerWithCallerSkip(skip int) LoggerOption {
	return func(cfg *loggerConfig) {
		cfg.callerSkip += skip
	}
}
