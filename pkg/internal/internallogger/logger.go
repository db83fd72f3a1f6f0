// Package internallogger adapts zap to the types.Logger interface used by every tremor
// component. Lines carry the tremor log schema identifier and the field names in
// pkg/logschema.
package internallogger

import (
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joeydtaylor/tremor/pkg/logschema"
)

type loggerConfig struct {
	level       zapcore.Level
	development bool
	console     bool
	fields      map[string]interface{}
	callerSkip  int
	output      io.Writer
}

// LoggerOption configures a ZapLoggerAdapter at construction.
type LoggerOption func(*loggerConfig)

// ZapLoggerAdapter implements types.Logger over a zap.Logger. Extra sinks share the level and
// encoder of the base output and can be swapped while the logger is in use.
type ZapLoggerAdapter struct {
	mu         sync.Mutex
	logger     *zap.Logger
	level      zap.AtomicLevel
	encoder    zapcore.EncoderConfig
	console    bool
	base       zapcore.Core
	baseFields []zap.Field
	callerSkip int
	sinks      map[string]sinkEntry
}

// NewLogger builds a logger writing JSON to stdout at info level unless options say otherwise.
func NewLogger(options ...LoggerOption) *ZapLoggerAdapter {
	cfg := &loggerConfig{
		level:      zapcore.InfoLevel,
		callerSkip: 2,
		output:     os.Stdout,
		fields:     map[string]interface{}{logschema.FieldSchema: logschema.SchemaID},
	}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	z := &ZapLoggerAdapter{
		level:      zap.NewAtomicLevelAt(cfg.level),
		encoder:    encoderConfig(cfg.development),
		console:    cfg.console,
		baseFields: mapFields(cfg.fields),
		callerSkip: cfg.callerSkip,
		sinks:      make(map[string]sinkEntry),
	}
	z.base = z.newCore(zapcore.AddSync(cfg.output), cfg.console)

	z.mu.Lock()
	z.rebuildLocked()
	z.mu.Unlock()
	return z
}

func (z *ZapLoggerAdapter) newCore(ws zapcore.WriteSyncer, console bool) zapcore.Core {
	var enc zapcore.Encoder
	if console {
		enc = zapcore.NewConsoleEncoder(z.encoder)
	} else {
		enc = zapcore.NewJSONEncoder(z.encoder)
	}
	return zapcore.NewCore(enc, ws, z.level)
}

func (z *ZapLoggerAdapter) rebuildLocked() {
	cores := []zapcore.Core{z.base}
	for _, id := range z.sinkIDsLocked() {
		cores = append(cores, z.sinks[id].core)
	}
	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(z.callerSkip))
	if len(z.baseFields) > 0 {
		l = l.With(z.baseFields...)
	}
	z.logger = l
}

func (z *ZapLoggerAdapter) current() *zap.Logger {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.logger
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	enc := zapcore.EncoderConfig{
		TimeKey:        logschema.FieldTimestamp,
		LevelKey:       logschema.FieldLevel,
		NameKey:        logschema.FieldLogger,
		CallerKey:      logschema.FieldCaller,
		MessageKey:     logschema.FieldMessage,
		StacktraceKey:  logschema.FieldStack,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeTime: func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendString(t.UTC().Format(time.RFC3339Nano))
		},
	}
	if development {
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return enc
}
