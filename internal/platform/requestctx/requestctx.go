// Package requestctx carries request and correlation IDs through context.Context
// so outbound clients can forward them to downstream services.
package requestctx

import "context"

type contextKey string

const (
	keyRequestID     contextKey = "request_id"
	keyCorrelationID contextKey = "correlation_id"
)

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	return value(ctx, keyRequestID)
}

// CorrelationID returns the correlation ID stored in ctx, or "".
func CorrelationID(ctx context.Context) string {
	return value(ctx, keyCorrelationID)
}

// WithRequestID stores a request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// WithCorrelationID stores a correlation ID in ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyCorrelationID, id)
}

func value(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}

	if id, ok := ctx.Value(key).(string); ok {
		return id
	}

	return ""
}
