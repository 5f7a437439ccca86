package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eth_block_explorer/internal/config"
)

// NewAppLogger creates a new AppLogger with the configured backend, level and output format.
// A nil out writes to stdout.
func NewAppLogger(cfg config.LoggerConfig, out io.Writer) (AppLogger, error) {
	if out == nil {
		out = os.Stdout
	}

	switch cfg.Backend {
	case config.LogBackendSlog, "":
		return newSlogLogger(cfg, out)
	case config.LogBackendZap:
		return newZapLogger(cfg, out)
	default:
		return nil, fmt.Errorf("logger setup failed: unsupported backend: %s", cfg.Backend)
	}
}

func newSlogLogger(cfg config.LoggerConfig, out io.Writer) (AppLogger, error) {
	level, err := toSlogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger setup failed: %w", err)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler, err := toSlogHandler(cfg.Format, out, opts)
	if err != nil {
		return nil, fmt.Errorf("logger setup failed: %w", err)
	}

	slogLogger := slog.New(handler)
	slog.SetDefault(slogLogger)

	return NewSlogAdapter(slogLogger), nil
}

func newZapLogger(cfg config.LoggerConfig, out io.Writer) (AppLogger, error) {
	level, err := toZapLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger setup failed: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case config.LogFormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case config.LogFormatText:
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("logger setup failed: unsupported output format: %s", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return NewZapAdapter(zap.New(core)), nil
}

// toSlogLevel converts a config.LogLevel to a slog.Level.
func toSlogLevel(level config.LogLevel) (slog.Level, error) {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug, nil
	case config.LogLevelInfo:
		return slog.LevelInfo, nil
	case config.LogLevelWarn:
		return slog.LevelWarn, nil
	case config.LogLevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported logger level: %s", level)
	}
}

// toZapLevel converts a config.LogLevel to a zapcore.Level.
func toZapLevel(level config.LogLevel) (zapcore.Level, error) {
	switch level {
	case config.LogLevelDebug:
		return zapcore.DebugLevel, nil
	case config.LogLevelInfo:
		return zapcore.InfoLevel, nil
	case config.LogLevelWarn:
		return zapcore.WarnLevel, nil
	case config.LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unsupported logger level: %s", level)
	}
}

// toSlogHandler creates a slog.Handler based on the config.LogFormat.
func toSlogHandler(format config.LogFormat, out io.Writer, opts *slog.HandlerOptions) (slog.Handler, error) {
	switch format {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(out, opts), nil
	case config.LogFormatText:
		return slog.NewTextHandler(out, opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
