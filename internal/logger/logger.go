// Package logger defines a generic logging interface for the application.
package logger

// AppLogger defines the contract for logging in the application.
type AppLogger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, args ...any)

	// Info logs a message at InfoLevel.
	Info(msg string, args ...any)

	// Warn logs a message at WarnLevel.
	Warn(msg string, args ...any)

	// Error logs a message at ErrorLevel.
	Error(msg string, args ...any)

	// With returns a new logger with the given key-value pairs added to its context.
	With(args ...any) AppLogger
}

// Nop returns an AppLogger that discards everything.
func Nop() AppLogger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func (n nopLogger) With(...any) AppLogger { return n }
