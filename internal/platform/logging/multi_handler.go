package logging

import (
	"context"
	"log/slog"
)

// MultiHandler fans a record out to several handlers, typically a console
// handler and a rolling JSON file.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a handler that writes to every given handler.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled is true if any child handler accepts the level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle passes a clone of r to each enabled child and returns the first error.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	var firstErr error

	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}

		if err := handler.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// WithAttrs returns a MultiHandler whose children all carry attrs.
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(c slog.Handler) slog.Handler { return c.WithAttrs(attrs) })
}

// WithGroup returns a MultiHandler whose children all open group name.
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.each(func(c slog.Handler) slog.Handler { return c.WithGroup(name) })
}

func (h *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	out := make([]slog.Handler, len(h.handlers))
	for i, c := range h.handlers {
		out[i] = fn(c)
	}

	return NewMultiHandler(out...)
}
