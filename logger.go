package spring

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pathfinding-specific context.
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

// WithPathType adds a path type (movement-class layer) field to the logger.
func (l *Logger) WithPathType(pathType uint8) *Logger {
	return &Logger{
		Logger: l.Logger.With("path_type", pathType),
	}
}

// LogSearch logs one executed search request.
func (l *Logger) LogSearch(ctx context.Context, pathID uint32, full, partial, shared bool) {
	l.DebugContext(ctx, "search completed",
		"path_id", pathID,
		"full", full,
		"partial", partial,
		"shared", shared,
	)
}

// LogUpdate logs one manager update batch.
func (l *Logger) LogUpdate(ctx context.Context, requests, shared, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "update completed with failed requests",
			"requests", requests,
			"shared", shared,
			"failed", failed,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"requests", requests,
			"shared", shared,
		)
	}
}

// LogTerrainChange logs a terrain change notification and its fallout.
func (l *Logger) LogTerrainChange(ctx context.Context, cacheDropped, pathsRequeued int) {
	l.DebugContext(ctx, "terrain change applied",
		"cache_dropped", cacheDropped,
		"paths_requeued", pathsRequeued,
	)
}

// LogSnapshot logs a cache snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"entries", entries,
		)
	}
}
