// Package logger is a slog-based structured logger with five severities
// (trace/debug/info/warning/error) instead of slog's default four, a
// "severity" field name instead of "level", and an optional rotating
// file sink via lumberjack.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severities below slog.LevelDebug and between Warn/Error don't exist in
// slog's default four, so trace sits below debug and warning is an alias
// of slog's Warn renamed for display.
const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
)

func severityName(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarning:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// Config controls where and how the logger writes.
type Config struct {
	Level      slog.Level
	JSON       bool
	FilePath   string // empty => stderr
	MaxSizeMB  int    // lumberjack rotation threshold; 0 => lumberjack default
	MaxBackups int
}

func replaceSeverity(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		return slog.Attr{Key: "severity", Value: slog.StringValue(severityName(level))}
	}
	return a
}

// New builds a *slog.Logger per cfg. A non-empty FilePath routes output
// through a lumberjack.Logger so long-running embedders don't have to
// manage log rotation themselves.
func New(cfg Config) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, ReplaceAttr: replaceSeverity}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Nop returns a logger that discards everything, for tests and embedders
// that don't want filesystem-core chatter.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// Trace logs at LevelTrace, the severity below Debug.
func Trace(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.Log(ctx, LevelTrace, msg, args...)
}
