package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the structured logging facade used across the engine.
// Key-value pairs alternate key, value.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	Err(err error, msg string, kv ...any)
	With(kv ...any) Logger
}

type zlogger struct {
	l zerolog.Logger
}

// New builds a Logger at the given level writing to the given writers.
// An unknown level falls back to info; no writers means console on stderr.
func New(level string, writers ...io.Writer) Logger {
	lv, err := zerolog.ParseLevel(level)
	if err != nil || lv == zerolog.NoLevel {
		lv = zerolog.InfoLevel
	}
	var w io.Writer
	switch len(writers) {
	case 0:
		w = Console()
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}
	return &zlogger{l: zerolog.New(w).Level(lv).With().Timestamp().Logger()}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &zlogger{l: zerolog.Nop()}
}

// Console returns a human-readable stderr writer.
func Console() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
}

// File returns a size-rotated file writer.
func File(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}
}

func (z *zlogger) Debug(msg string, kv ...any) { z.l.Debug().Fields(kv).Msg(msg) }
func (z *zlogger) Info(msg string, kv ...any)  { z.l.Info().Fields(kv).Msg(msg) }
func (z *zlogger) Warn(msg string, kv ...any)  { z.l.Warn().Fields(kv).Msg(msg) }
func (z *zlogger) Error(msg string, kv ...any) { z.l.Error().Fields(kv).Msg(msg) }

func (z *zlogger) Err(err error, msg string, kv ...any) {
	z.l.Error().Err(err).Fields(kv).Msg(msg)
}

func (z *zlogger) With(kv ...any) Logger {
	return &zlogger{l: z.l.With().Fields(kv).Logger()}
}
