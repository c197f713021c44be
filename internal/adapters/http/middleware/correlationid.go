package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/requestctx"
)

const (
	// HeaderCorrelationID spans a whole transaction. A sync triggered over
	// HTTP keeps the caller's correlation ID instead of its cycle ID.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin key holding the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID returns middleware that propagates X-Correlation-ID.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		contextKey: ContextKeyCorrelationID,
		enrichers: []func(ctx context.Context, id string) context.Context{
			logging.WithCorrelationID,
			requestctx.WithCorrelationID,
		},
	})
}

// GetCorrelationID returns the correlation ID, or "" outside the middleware.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}
