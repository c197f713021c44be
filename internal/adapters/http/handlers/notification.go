package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/adapters/notify"
)

// NotificationHandler exposes the notification hub.
type NotificationHandler struct {
	hub *notify.Hub
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

type notificationsResponse struct {
	Items   []notify.Notification `json:"items"`
	Pending int                   `json:"pending"`
}

// List handles GET /api/v1/notifications. ?all=true includes expired and
// acknowledged entries.
func (h *NotificationHandler) List(c *gin.Context) {
	items := h.hub.Active()
	if all, _ := strconv.ParseBool(c.Query("all")); all {
		items = h.hub.All()
	}

	if items == nil {
		items = []notify.Notification{}
	}

	c.JSON(http.StatusOK, notificationsResponse{Items: items, Pending: len(h.hub.Pending())})
}

// Ack handles POST /api/v1/notifications/:id/ack.
func (h *NotificationHandler) Ack(c *gin.Context) {
	var req dto.NotificationRequest
	if err := dto.BindURIAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	n, err := h.hub.Ack(req.ID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, n)
}

type ackAllResponse struct {
	Acknowledged int `json:"acknowledged"`
}

// AckAll handles POST /api/v1/notifications/ack.
func (h *NotificationHandler) AckAll(c *gin.Context) {
	c.JSON(http.StatusOK, ackAllResponse{Acknowledged: h.hub.AckAll()})
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	n := rg.Group("/notifications")
	n.GET("", h.List)
	n.POST("/ack", h.AckAll)
	n.POST("/:id/ack", h.Ack)
}
