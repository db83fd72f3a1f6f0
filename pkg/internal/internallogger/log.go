package internallogger

import (
	"errors"
	"syscall"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// Log emits an entry at level with structured fields.
func (z *ZapLoggerAdapter) Log(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	l := z.current()
	if l == nil {
		return
	}
	if ce := l.Check(ConvertLevel(level), msg); ce != nil {
		ce.Write(pairFields(keysAndValues)...)
	}
}

func (z *ZapLoggerAdapter) Debug(msg string, keysAndValues ...interface{}) {
	z.Log(types.DebugLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	z.Log(types.InfoLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	z.Log(types.WarnLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	z.Log(types.ErrorLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) DPanic(msg string, keysAndValues ...interface{}) {
	z.Log(types.DPanicLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Panic(msg string, keysAndValues ...interface{}) {
	z.Log(types.PanicLevel, msg, keysAndValues...)
}

func (z *ZapLoggerAdapter) Fatal(msg string, keysAndValues ...interface{}) {
	z.Log(types.FatalLevel, msg, keysAndValues...)
}

// GetLevel returns the minimum enabled level.
func (z *ZapLoggerAdapter) GetLevel() types.LogLevel {
	return convertZapLevel(z.level.Level())
}

// SetLevel changes the minimum level of the base output and every sink.
func (z *ZapLoggerAdapter) SetLevel(level types.LogLevel) {
	z.level.SetLevel(ConvertLevel(level))
}

// Flush syncs every output. Terminals and pipes that cannot be synced are not an error.
func (z *ZapLoggerAdapter) Flush() error {
	l := z.current()
	if l == nil {
		return nil
	}
	err := l.Sync()
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EBADF) {
		return nil
	}
	return err
}
