package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Recovery returns middleware that turns a panic into a logged 500 with the
// standard error envelope. It must be first in the chain.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()
			traceID := dto.GetTraceID(c)

			logging.FromContextOr(ctx, logger).ErrorContext(ctx, "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(traceID))
		}()

		c.Next()
	}
}
