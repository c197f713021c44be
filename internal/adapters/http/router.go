package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds API requests, including a triggered sync.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains the handlers and settings used to build the routes.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string

	Health        *handlers.HealthHandler
	Quotes        *handlers.QuoteHandler
	Sync          *handlers.SyncHandler
	Notifications *handlers.NotificationHandler

	// Timeout bounds /api/v1 requests; zero disables it.
	Timeout time.Duration
}

// SetupRouter installs middleware and routes on engine.
//
// Middleware order:
//  1. Recovery
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry (otelgin + request metrics)
//  5. Logging (skips /-/)
//  6. Timeout (/api/v1 only)
//
// Route groups:
//   - /-/      live, ready, build, metrics
//   - /api/v1  quotes, categories, sync, notifications
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging(cfg.Logger))

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(engine)
	}

	api := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterRoutes(api)
	}

	if cfg.Sync != nil {
		cfg.Sync.RegisterRoutes(api)
	}

	if cfg.Notifications != nil {
		cfg.Notifications.RegisterRoutes(api)
	}
}
