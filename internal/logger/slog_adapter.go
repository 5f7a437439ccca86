package logger

import (
	"context"
	"log/slog"
)

// slogAdapter implements AppLogger on top of a *slog.Logger.
type slogAdapter struct {
	base *slog.Logger
}

// NewSlogAdapter creates a new AppLogger that wraps the given *slog.Logger.
// A nil logger falls back to slog.Default().
func NewSlogAdapter(slogLogger *slog.Logger) AppLogger {
	if slogLogger == nil {
		slogLogger = slog.Default()
	}
	return &slogAdapter{base: slogLogger}
}

// Debug logs a message at slog.LevelDebug.
func (s *slogAdapter) Debug(msg string, args ...any) {
	s.log(slog.LevelDebug, msg, args)
}

// Info logs a message at slog.LevelInfo.
func (s *slogAdapter) Info(msg string, args ...any) {
	s.log(slog.LevelInfo, msg, args)
}

// Warn logs a message at slog.LevelWarn.
func (s *slogAdapter) Warn(msg string, args ...any) {
	s.log(slog.LevelWarn, msg, args)
}

// Error logs a message at slog.LevelError.
func (s *slogAdapter) Error(msg string, args ...any) {
	s.log(slog.LevelError, msg, args)
}

// With returns a child logger that adds args to every record.
func (s *slogAdapter) With(args ...any) AppLogger {
	return &slogAdapter{base: s.base.With(args...)}
}

// log skips building the record when the handler filters out level.
func (s *slogAdapter) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !s.base.Enabled(ctx, level) {
		return
	}
	s.base.Log(ctx, level, msg, args...)
}
