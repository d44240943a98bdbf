package logging

import (
	"context"
	"log/slog"
)

// contextKey is the key type used to store the logger in a context.
// Using a custom type prevents collisions.
type contextKey string

const loggerKey = contextKey("logger")

// ContextWithLogger returns a child context carrying the given logger.
// Callers are expected to enrich the logger with request-scoped fields
// (request id, actor id) before attaching it.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the scoped logger from the context, falling back to
// slog.Default when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}
