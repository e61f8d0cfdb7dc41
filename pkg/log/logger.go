package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive;
// an empty string parses as InfoLevel.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// Field is a single structured logging attribute.
type Field struct {
	Key   string
	Value any
}

// Str returns a string field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int returns an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 returns an int64 field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Err returns an error field under the conventional "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Component tags log lines with the emitting component name.
func Component(name string) Field { return Field{Key: "component", Value: name} }

// Logger is the structured logging facade passed into each component at
// construction. Implementations are safe for concurrent use.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger carrying the additional fields.
	With(fields ...Field) Logger
}

// Option configures a logger built by NewLogger.
type Option func(*settings)

type settings struct {
	level  Level
	format string
	out    io.Writer
}

// WithLevel sets the minimum level emitted.
func WithLevel(l Level) Option { return func(s *settings) { s.level = l } }

// WithFormat selects the output format: "text" or "json".
func WithFormat(format string) Option { return func(s *settings) { s.format = format } }

// WithOutput directs log output to w instead of stderr.
func WithOutput(w io.Writer) Option { return func(s *settings) { s.out = w } }

// WithFile appends log output to path with size-based rotation. maxSizeMB
// and maxBackups fall back to 100/7 when zero or negative.
func WithFile(path string, maxSizeMB, maxBackups int) Option {
	return func(s *settings) {
		if maxSizeMB <= 0 {
			maxSizeMB = 100
		}
		if maxBackups <= 0 {
			maxBackups = 7
		}
		s.out = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
	}
}

// NewLogger builds a Logger backed by slog with the given options.
// Defaults: info level, text format, stderr output.
func NewLogger(opts ...Option) Logger {
	s := settings{level: InfoLevel, format: "text", out: os.Stderr}
	for _, opt := range opts {
		opt(&s)
	}
	hopts := &slog.HandlerOptions{Level: toSlogLevel(s.level)}
	var h slog.Handler
	if s.format == "json" {
		h = slog.NewJSONHandler(s.out, hopts)
	} else {
		h = slog.NewTextHandler(s.out, hopts)
	}
	return &baseLogger{inner: slog.New(h)}
}

type baseLogger struct {
	inner *slog.Logger
}

func (l *baseLogger) Debug(msg string, fields ...Field) { l.inner.Debug(msg, attrs(fields)...) }
func (l *baseLogger) Info(msg string, fields ...Field)  { l.inner.Info(msg, attrs(fields)...) }
func (l *baseLogger) Warn(msg string, fields ...Field)  { l.inner.Warn(msg, attrs(fields)...) }
func (l *baseLogger) Error(msg string, fields ...Field) { l.inner.Error(msg, attrs(fields)...) }

func (l *baseLogger) With(fields ...Field) Logger {
	return &baseLogger{inner: l.inner.With(attrs(fields)...)}
}

func attrs(fields []Field) []any {
	if len(fields) == 0 {
		return nil
	}
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

func toSlogLevel(l Level) slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() Logger {
	return &baseLogger{inner: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
