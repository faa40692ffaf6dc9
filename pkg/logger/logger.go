// Package logger defines the small logging interface accepted by the SDK
// components, with a zerolog-backed default implementation.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is implemented by anything the SDK can log through. Arguments
// alternate between string keys and values.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZeroLogger adapts a zerolog.Logger to the Logger interface.
type ZeroLogger struct {
	logger zerolog.Logger
}

// New returns a ZeroLogger writing timestamped JSON lines to w.
func New(w io.Writer) *ZeroLogger {
	return &ZeroLogger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// Default logs to stderr. Components constructed without an explicit
// Logger fall back to it.
func Default() *ZeroLogger {
	return New(os.Stderr)
}

func (z *ZeroLogger) Error(msg string, args ...any) { z.emit(z.logger.Error(), msg, args) }
func (z *ZeroLogger) Warn(msg string, args ...any)  { z.emit(z.logger.Warn(), msg, args) }
func (z *ZeroLogger) Info(msg string, args ...any)  { z.emit(z.logger.Info(), msg, args) }
func (z *ZeroLogger) Debug(msg string, args ...any) { z.emit(z.logger.Debug(), msg, args) }

func (z *ZeroLogger) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}
