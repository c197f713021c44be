// Package ports defines the interfaces the application layer depends on.
// Adapters (storage backends, the remote client, the notification hub)
// implement them; the app package never imports an adapter directly.
//
// Conventions:
//   - Context is the first parameter of every blocking call
//   - Methods return domain types and domain errors
//   - Interfaces stay small; callers declare only what they use
package ports

import (
	"context"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Well-known storage keys.
const (
	// KeyQuotes holds the JSON-encoded quote list in durable storage.
	KeyQuotes = "quotes"

	// KeyLastSelectedCategory holds the category filter as a plain string.
	KeyLastSelectedCategory = "lastSelectedCategory"

	// KeyLastViewedQuote holds the last displayed quote in session storage.
	KeyLastViewedQuote = "lastViewedQuote"
)

// KeyValueStore is durable string-keyed blob storage.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the underlying connection or file handle.
	Close() error
}

// RemoteQuoteSource is the remote endpoint the reconciler pulls from.
type RemoteQuoteSource interface {
	// FetchRemote returns the remote quote list in server order.
	// Returns domain.ErrUnavailable on network failure or non-2xx status and
	// domain.ErrMalformedResponse when the body is not a list.
	FetchRemote(ctx context.Context) ([]domain.Quote, error)

	// PushLocal posts the full local list. Callers treat it as fire-and-forget.
	PushLocal(ctx context.Context, quotes []domain.Quote) error
}

// NotificationKind distinguishes transient notices from ones that need acknowledgement.
type NotificationKind string

const (
	// NotificationInfo expires on its own after a short lifetime.
	NotificationInfo NotificationKind = "info"

	// NotificationConflict stays pending until the user acknowledges it.
	NotificationConflict NotificationKind = "conflict"
)

// Notifier delivers user-facing messages out of band.
type Notifier interface {
	Notify(ctx context.Context, kind NotificationKind, message string)
}

// StoreObserver is told whenever the quote list changes and has been persisted.
// The HTTP layer and metrics use it to refresh derived views such as categories.
type StoreObserver interface {
	QuotesChanged(ctx context.Context, quotes []domain.Quote)
}

// SyncObserver is told when a reconciliation cycle finishes, skipped cycles included.
type SyncObserver interface {
	CycleFinished(ctx context.Context, result domain.SyncResult)
}
