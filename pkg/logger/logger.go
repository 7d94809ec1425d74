// Package logger is the service's structured logger.
//
// Entries are JSON lines produced by charmbracelet/log. Request-scoped values
// (request ID, user ID, trace ID) travel in a context.Context and are attached
// to an entry with WithContext.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Level is a log severity.
type Level = charmlog.Level

// Severities accepted by Config.Level and SetLevel.
const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
)

// ParseLevel maps a config value such as "debug" or "WARN" to a Level.
// Unknown values fall back to InfoLevel.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := charmlog.ParseLevel(s)
	if err != nil {
		return InfoLevel
	}
	return lvl
}

// Field is one key/value pair attached to an entry.
type Field struct {
	Key   string
	Value any
}

// Logger is what services, handlers and middleware log through.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithContext returns a child carrying the request-scoped ids found in ctx.
	WithContext(ctx context.Context) Logger
	WithFields(fields ...Field) Logger

	SetLevel(level Level)
}

// Config configures New.
type Config struct {
	Level  Level
	Output io.Writer
	Caller bool
}

// DefaultConfig logs at info level to stdout.
func DefaultConfig() *Config {
	return &Config{Level: InfoLevel, Output: os.Stdout}
}

type charmLogger struct {
	base *charmlog.Logger
}

// New builds a JSON logger. A nil cfg means DefaultConfig.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	return &charmLogger{base: charmlog.NewWithOptions(out, charmlog.Options{
		Formatter:       charmlog.JSONFormatter,
		Level:           cfg.Level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		ReportCaller:    cfg.Caller,
		CallerOffset:    1,
	})}
}

func (l *charmLogger) Debug(msg string, fields ...Field) { l.base.Debug(msg, keyvals(fields)...) }
func (l *charmLogger) Info(msg string, fields ...Field) { l.base.Info(msg, keyvals(fields)...) }
func (l *charmLogger) Warn(msg string, fields ...Field) { l.base.Warn(msg, keyvals(fields)...) }
func (l *charmLogger) Error(msg string, fields ...Field) { l.base.Error(msg, keyvals(fields)...) }

func (l *charmLogger) SetLevel(level Level) { l.base.SetLevel(level) }

func (l *charmLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(contextFields(ctx)...)
}

func (l *charmLogger) WithFields(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	return &charmLogger{base: l.base.With(keyvals(fields)...)}
}

func keyvals(fields []Field) []any {
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	traceIDKey
)

var ctxFieldNames = [...]string{
	requestIDKey: "request_id",
	userIDKey:    "user_id",
	traceIDKey:   "trace_id",
}

func contextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	var fields []Field
	for key, name := range ctxFieldNames {
		if v, ok := ctx.Value(ctxKey(key)).(string); ok && v != "" {
			fields = append(fields, Field{Key: name, Value: v})
		}
	}
	return fields
}

// WithRequestID stores the request id for WithContext.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithUserID stores the authenticated caller's id for WithContext.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// WithTraceID stores the active trace id for WithContext.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func String(key, value string) Field { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d.String()} }

// Error attaches err under the "error" key. A nil err logs as null.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error"}
	}
	return Field{Key: "error", Value: err.Error()}
}

var (
	globalMu sync.RWMutex
	global   = New(nil)
)

// SetGlobalLogger replaces the process-wide logger used by L and WithContext.
func SetGlobalLogger(l Logger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// L returns the process-wide logger.
func L() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// WithContext is L().WithContext(ctx).
func WithContext(ctx context.Context) Logger {
	return L().WithContext(ctx)
}
