// Package logger provides structured logging for the healing engine and
// CLI, backed by charmbracelet/log.
package logger

import (
	"context"
	"io"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the interface the rest of the codebase logs against.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

// LogLevel names a logging verbosity level.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

func (l LogLevel) toCharmLevel() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Config controls logger construction.
type Config struct {
	Level      LogLevel
	Output     io.Writer
	JSON       bool
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns terminal-friendly defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

type charmLogger struct {
	l *charmlog.Logger
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }
func (c *charmLogger) With(keyvals ...any) Logger       { return &charmLogger{l: c.l.With(keyvals...)} }

// NewLogger builds a Logger from cfg, falling back to defaults.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	cl := charmlog.NewWithOptions(cfg.Output, charmlog.Options{
		ReportCaller:    cfg.AddSource,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level.toCharmLevel(),
	})
	if cfg.JSON {
		cl.SetFormatter(charmlog.JSONFormatter)
	} else {
		cl.SetFormatter(charmlog.TextFormatter)
		cl.SetStyles(defaultStyles())
	}
	return &charmLogger{l: cl}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// Init installs the package-level default logger.
func Init(cfg *Config) {
	defaultMu.Lock()
	defaultLogger = NewLogger(cfg)
	defaultMu.Unlock()
}

// GetDefault returns the default logger, creating one lazily so callers
// never need a nil check.
func GetDefault() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(DefaultConfig())
	}
	return defaultLogger
}

type ctxKey struct{}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or the default.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
			return l
		}
	}
	return GetDefault()
}

// Package-level convenience functions on the default logger.

func Debug(msg string, keyvals ...any) { GetDefault().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { GetDefault().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { GetDefault().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { GetDefault().Error(msg, keyvals...) }
