package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// SyncRunner runs reconciliation cycles on demand.
type SyncRunner interface {
	Sync(ctx context.Context) domain.SyncResult
	Last() (domain.SyncResult, bool)
}

// SyncHandler lets clients trigger a cycle and inspect the last one.
type SyncHandler struct {
	runner SyncRunner
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(runner SyncRunner) *SyncHandler {
	return &SyncHandler{runner: runner}
}

// Trigger handles POST /api/v1/sync. The cycle's own failures are part of
// the result, so the response is 200 even when the remote is down.
func (h *SyncHandler) Trigger(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToSyncResponse(h.runner.Sync(c.Request.Context())))
}

// Last handles GET /api/v1/sync/last.
func (h *SyncHandler) Last(c *gin.Context) {
	r, ok := h.runner.Last()
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("sync cycle", ""))
		return
	}

	c.JSON(http.StatusOK, dto.ToSyncResponse(r))
}

// RegisterRoutes registers the sync routes.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Trigger)
	rg.GET("/sync/last", h.Last)
}
