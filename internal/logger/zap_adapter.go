package logger

import (
	"go.uber.org/zap"
)

// zapAdapter implements AppLogger on top of a zap SugaredLogger.
// Key-value pairs are passed through the sugared "w" methods unchanged.
type zapAdapter struct {
	adaptee *zap.SugaredLogger
}

// NewZapAdapter creates a new AppLogger that wraps the given *zap.Logger.
func NewZapAdapter(zapLogger *zap.Logger) AppLogger {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &zapAdapter{adaptee: zapLogger.Sugar()}
}

// Debug logs a message at zap.DebugLevel.
func (z *zapAdapter) Debug(msg string, args ...any) {
	z.adaptee.Debugw(msg, args...)
}

// Info logs a message at zap.InfoLevel.
func (z *zapAdapter) Info(msg string, args ...any) {
	z.adaptee.Infow(msg, args...)
}

// Warn logs a message at zap.WarnLevel.
func (z *zapAdapter) Warn(msg string, args ...any) {
	z.adaptee.Warnw(msg, args...)
}

// Error logs a message at zap.ErrorLevel.
func (z *zapAdapter) Error(msg string, args ...any) {
	z.adaptee.Errorw(msg, args...)
}

// With returns a new AppLogger with the given arguments added to the context.
func (z *zapAdapter) With(args ...any) AppLogger {
	return &zapAdapter{adaptee: z.adaptee.With(args...)}
}
