// Package handlers implements the quote API and the /-/ operational endpoints.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quotesync/internal/ports"
)

// BuildInfo is injected at build time with ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo creates a BuildInfo with the Go version filled in.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// HealthHandler serves liveness, readiness, build info and metrics.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	metrics   http.Handler
}

// NewHealthHandler creates a health handler. Metrics are read from gatherer;
// a nil gatherer serves the default Prometheus registry.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo, gatherer prometheus.Gatherer) *HealthHandler {
	metrics := promhttp.Handler()
	if gatherer != nil {
		metrics = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	return &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
		metrics:   metrics,
	}
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles GET /-/live. It never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness handles GET /-/ready. Storage failures make it 503; a remote
// outage only reports "degraded", since quotes keep working offline.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// BuildInfoHandler handles GET /-/build.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// RegisterRoutes registers the /-/ endpoints on engine.
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	rg := engine.Group("/-")
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(h.metrics))
}
