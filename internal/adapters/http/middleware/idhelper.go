package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxIDLength bounds inbound IDs; longer values are replaced.
const maxIDLength = 128

// idMiddlewareConfig describes one ID header.
type idMiddlewareConfig struct {
	headerName string
	contextKey string

	// enrichers run in order on the request context once the ID is known.
	enrichers []func(ctx context.Context, id string) context.Context
}

// createIDMiddleware extracts the ID from the header or generates a UUID,
// echoes it in the response and stores it in both the gin and request contexts.
func createIDMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)
		if id == "" || len(id) > maxIDLength {
			id = uuid.NewString()
		}

		c.Set(cfg.contextKey, id)
		c.Header(cfg.headerName, id)

		ctx := c.Request.Context()
		for _, enrich := range cfg.enrichers {
			ctx = enrich(ctx, id)
		}

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func getIDFromContext(c *gin.Context, key string) string {
	if id, exists := c.Get(key); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}
