package logger

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type contextKey string

const (
	loggerKey contextKey = "tracklink.logger"
	bootIDKey contextKey = "tracklink.boot_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context, or the default logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// NewBootID returns a fresh, time-ordered boot identifier.
func NewBootID() string {
	return ulid.Make().String()
}

// WithBootID tags the context with the id of the current boot. Every line
// logged through L carries it, so lines from one power cycle group together.
func WithBootID(ctx context.Context, bootID string) context.Context {
	return context.WithValue(ctx, bootIDKey, bootID)
}

// BootIDFromContext extracts the boot id from context.
func BootIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(bootIDKey).(string); ok {
		return id
	}
	return ""
}

// L returns the context logger enriched with the boot id.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := BootIDFromContext(ctx); id != "" {
		l = l.With("boot_id", id)
	}
	return l
}
