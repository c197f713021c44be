// Package middleware provides the gin middleware of the quote API.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/requestctx"
)

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin key holding the request ID.
	ContextKeyRequestID = "request_id"
)

// RequestID returns middleware that takes X-Request-ID from the request or
// generates one. The ID is echoed in the response, tagged on the context
// logger and forwarded by the remote client.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderRequestID,
		contextKey: ContextKeyRequestID,
		enrichers: []func(ctx context.Context, id string) context.Context{
			logging.WithRequestID,
			requestctx.WithRequestID,
		},
	})
}

// GetRequestID returns the request ID, or "" outside the middleware.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}
