package bitmem

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bitmem-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContextID adds the partition context field to the logger.
func (l *Logger) WithContextID(context uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("context", context),
	}
}

// WithIdentifier adds the partition identifier field to the logger.
func (l *Logger) WithIdentifier(identifier uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("identifier", identifier),
	}
}

// WithBits adds a size-in-bits field to the logger.
func (l *Logger) WithBits(bits uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("bits", bits),
	}
}
