package internallogger

import (
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

var levels = []struct {
	name string
	own  types.LogLevel
	zap  zapcore.Level
}{
	{"debug", types.DebugLevel, zapcore.DebugLevel},
	{"info", types.InfoLevel, zapcore.InfoLevel},
	{"warn", types.WarnLevel, zapcore.WarnLevel},
	{"error", types.ErrorLevel, zapcore.ErrorLevel},
	{"dpanic", types.DPanicLevel, zapcore.DPanicLevel},
	{"panic", types.PanicLevel, zapcore.PanicLevel},
	{"fatal", types.FatalLevel, zapcore.FatalLevel},
}

// parseLogLevel maps a level name to a LogLevel. "warning" is accepted for warn; anything
// unknown is info.
func parseLogLevel(name string) types.LogLevel {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	for _, l := range levels {
		if l.name == name {
			return l.own
		}
	}
	return types.InfoLevel
}

// ConvertLevel converts a types.LogLevel to a zap level.
func ConvertLevel(level types.LogLevel) zapcore.Level {
	for _, l := range levels {
		if l.own == level {
			return l.zap
		}
	}
	return zapcore.InfoLevel
}

func convertZapLevel(level zapcore.Level) types.LogLevel {
	for _, l := range levels {
		if l.zap == level {
			return l.own
		}
	}
	return types.InfoLevel
}
