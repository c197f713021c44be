// Package notify implements the user-facing notification side channel.
//
// Info notices expire on their own after a short lifetime. Conflict notices
// stay pending until acknowledged, which is how the HTTP API and CLI surface
// the "server version will be used" confirmations produced by a sync cycle.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Notification is a single message held by the Hub.
type Notification struct {
	ID           string                 `json:"id"`
	Kind         ports.NotificationKind `json:"kind"`
	Message      string                 `json:"message"`
	CreatedAt    time.Time              `json:"createdAt"`
	ExpiresAt    *time.Time             `json:"expiresAt,omitempty"`
	Acknowledged bool                   `json:"acknowledged"`
}

// Active reports whether n should still be shown at time now.
func (n Notification) Active(now time.Time) bool {
	if n.Acknowledged {
		return false
	}

	return n.ExpiresAt == nil || now.Before(*n.ExpiresAt)
}

// Config configures a Hub.
type Config struct {
	// TransientTTL is the lifetime of info notices.
	TransientTTL time.Duration

	// History caps how many notifications are retained, active or not.
	History int

	Logger *slog.Logger
}

// Hub stores notifications in memory and implements ports.Notifier.
type Hub struct {
	ttl     time.Duration
	history int
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	items []Notification
}

var _ ports.Notifier = (*Hub)(nil)

// NewHub creates a Hub. Zero values in cfg fall back to a 3s lifetime and a
// history of 50.
func NewHub(cfg Config) *Hub {
	ttl := cfg.TransientTTL
	if ttl <= 0 {
		ttl = 3 * time.Second
	}

	history := cfg.History
	if history <= 0 {
		history = 50
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		ttl:     ttl,
		history: history,
		logger:  logger.With(slog.String("component", "notify")),
		now:     time.Now,
	}
}

// Notify records a message. Info messages get an expiry; conflicts do not.
func (h *Hub) Notify(ctx context.Context, kind ports.NotificationKind, message string) {
	now := h.now()

	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}

	if kind != ports.NotificationConflict {
		expires := now.Add(h.ttl)
		n.ExpiresAt = &expires
	}

	h.mu.Lock()
	h.items = append(h.items, n)
	h.trim(now)
	h.mu.Unlock()

	level := slog.LevelInfo
	if kind == ports.NotificationConflict {
		level = slog.LevelWarn
	}

	logging.FromContextOr(ctx, h.logger).Log(ctx, level, "notification",
		slog.String("notification_id", n.ID),
		slog.String("kind", string(kind)),
		slog.String("message", message),
	)
}

// trim drops inactive entries first, oldest first, then the oldest active
// ones until the history cap holds. h.mu must be held.
func (h *Hub) trim(now time.Time) {
	excess := len(h.items) - h.history
	if excess <= 0 {
		return
	}

	h.items = slices.DeleteFunc(h.items, func(n Notification) bool {
		if excess > 0 && !n.Active(now) {
			excess--
			return true
		}

		return false
	})

	if excess > 0 {
		h.items = slices.Delete(h.items, 0, excess)
	}
}

// Active returns the notifications still to be shown, oldest first.
func (h *Hub) Active() []Notification {
	now := h.now()

	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Notification, 0, len(h.items))

	for _, n := range h.items {
		if n.Active(now) {
			out = append(out, n)
		}
	}

	return out
}

// All returns every retained notification, oldest first.
func (h *Hub) All() []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.items)
}

// Pending returns the unacknowledged conflict notices.
func (h *Hub) Pending() []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []Notification

	for _, n := range h.items {
		if n.Kind == ports.NotificationConflict && !n.Acknowledged {
			out = append(out, n)
		}
	}

	return out
}

// Ack marks the notification with id as acknowledged.
func (h *Hub) Ack(id string) (Notification, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.items {
		if h.items[i].ID == id {
			h.items[i].Acknowledged = true
			return h.items[i], nil
		}
	}

	return Notification{}, domain.NewNotFoundError("notification", id)
}

// AckAll acknowledges every pending conflict and returns how many there were.
func (h *Hub) AckAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0

	for i := range h.items {
		if !h.items[i].Acknowledged && h.items[i].Kind == ports.NotificationConflict {
			h.items[i].Acknowledged = true
			count++
		}
	}

	return count
}
