package util

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey string

const (
	// RequestIDHeader carries the correlation id on outbound calls.
	RequestIDHeader = "X-Request-Id"

	requestIDCtxKey = contextKey("request_id")
	loggerCtxKey    = contextKey("logger")
)

// WithRequestID returns a context carrying a request id and a child logger
// tagged with it. An existing id in ctx is kept.
func WithRequestID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx
	}
	id := NewID()
	ctx = context.WithValue(ctx, requestIDCtxKey, id)
	return ContextWithLogger(ctx, slog.Default().With("request_id", id))
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return strings.TrimSpace(id)
}

// ContextWithLogger stores logger in ctx.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// LoggerFromContext returns the logger stored in ctx, or the default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}
