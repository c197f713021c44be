package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// FromContextOr returns the logger stored in ctx, or fallback.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}

	return fallback
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With returns a context whose logger carries the given attributes.
func With(ctx context.Context, attrs ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(attrs...))
}

// WithRequestID tags the context logger with an inbound request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return With(ctx, slog.String("request_id", requestID))
}

// WithTraceID tags the context logger with the active trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return With(ctx, slog.String("trace_id", traceID))
}

// WithCorrelationID tags the context logger with a correlation ID.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return With(ctx, slog.String("correlation_id", correlationID))
}

// WithCycleID tags the context logger with a reconciliation cycle ID.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return With(ctx, slog.String("sync_cycle_id", cycleID))
}

// SetDefault sets the logger used when no logger is in context.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
