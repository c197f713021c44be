package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Timeout returns middleware that puts a deadline on the request context.
// Handlers pass the context down (the sync trigger cancels its remote fetch
// with it); if the deadline passed and nothing was written, a 504 is sent.
func Timeout(timeout time.Duration, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok || timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			logging.FromContext(ctx).WarnContext(ctx, "request timeout",
				slog.String("path", c.Request.URL.Path),
				slog.Duration("timeout", timeout),
			)

			dto.AbortWithCode(c, dto.ErrorCodeTimeout, "request timeout exceeded")
		}
	}
}
