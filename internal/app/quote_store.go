// Package app holds the quote use cases: the ordered quote store, the
// reconciliation cycle, its scheduler, and the user-facing quote service.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// QuoteStore is the insertion-ordered quote list and the only writer of the
// "quotes" storage key. Reads see a consistent snapshot; Save persists the
// current list as a whole.
type QuoteStore struct {
	kv   ports.KeyValueStore
	seed func() []domain.Quote

	mu     sync.RWMutex
	quotes []domain.Quote

	// version counts mutations; saved is the version last written.
	version uint64
	saved   uint64

	// saveMu orders writes so an older snapshot never lands after a newer one.
	saveMu sync.Mutex
}

// StoreOption customizes a QuoteStore.
type StoreOption func(*QuoteStore)

// WithSeed replaces the default seed set used when storage holds no quotes.
// A nil function disables seeding.
func WithSeed(seed func() []domain.Quote) StoreOption {
	return func(s *QuoteStore) { s.seed = seed }
}

// NewQuoteStore creates an empty store over kv. Call Load before use.
func NewQuoteStore(kv ports.KeyValueStore, opts ...StoreOption) *QuoteStore {
	s := &QuoteStore{kv: kv, seed: domain.DefaultQuotes}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load replaces the in-memory list with the persisted one. An absent key,
// an unparsable value, an empty list, or a read failure all fall back to the
// seed set. Load never fails; problems are logged.
func (s *QuoteStore) Load(ctx context.Context) {
	logger := logging.FromContext(ctx)

	quotes, err := s.read(ctx)

	switch {
	case err == nil && len(quotes) > 0:
		logger.DebugContext(ctx, "quotes loaded", slog.Int("count", len(quotes)))
	case err == nil, domain.IsNotFound(err):
		logger.InfoContext(ctx, "no stored quotes, using seed set")

		quotes = s.seedQuotes()
	default:
		logger.ErrorContext(ctx, "stored quotes unreadable, using seed set", slog.Any("error", err))

		quotes = s.seedQuotes()
	}

	s.mu.Lock()
	s.quotes = quotes
	s.saved = s.version
	s.mu.Unlock()
}

func (s *QuoteStore) read(ctx context.Context) ([]domain.Quote, error) {
	raw, err := s.kv.Get(ctx, ports.KeyQuotes)
	if err != nil {
		return nil, err
	}

	var quotes []domain.Quote
	if err := json.Unmarshal(raw, &quotes); err != nil {
		return nil, domain.NewPersistenceError("decode", ports.KeyQuotes, err)
	}

	return quotes, nil
}

func (s *QuoteStore) seedQuotes() []domain.Quote {
	if s.seed == nil {
		return nil
	}

	return s.seed()
}

// Save writes the current list to storage. Failures are logged and returned
// as *domain.PersistenceError; the in-memory list is kept and marked dirty.
func (s *QuoteStore) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	quotes := slices.Clone(s.quotes)
	version := s.version
	s.mu.RUnlock()

	if quotes == nil {
		quotes = []domain.Quote{}
	}

	data, err := json.Marshal(quotes)
	if err == nil {
		err = s.kv.Set(ctx, ports.KeyQuotes, data)
	}

	if err != nil {
		var pe *domain.PersistenceError
		if !errors.As(err, &pe) {
			err = domain.NewPersistenceError("write", ports.KeyQuotes, err)
		}

		logging.FromContext(ctx).ErrorContext(ctx, "saving quotes failed",
			slog.Int("count", len(quotes)),
			slog.Any("error", err),
		)

		return err
	}

	s.mu.Lock()
	s.saved = version
	s.mu.Unlock()

	return nil
}

// Add appends q. It performs no validation or dedup; callers check first.
func (s *QuoteStore) Add(q domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, q)
	s.version++
}

// AddIfAbsent appends q unless a quote with the same text exists.
func (s *QuoteStore) AddIfAbsent(q domain.Quote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.quotes, func(e domain.Quote) bool { return e.Text == q.Text }) {
		return false
	}

	s.quotes = append(s.quotes, q)
	s.version++

	return true
}

// FindByText returns the position and record of the quote with exactly text.
func (s *QuoteStore) FindByText(text string) (int, domain.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, q := range s.quotes {
		if q.Text == text {
			return i, q, true
		}
	}

	return -1, domain.Quote{}, false
}

// ReplaceAt overwrites the record at index.
func (s *QuoteStore) ReplaceAt(index int, q domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.quotes) {
		return domain.NewNotFoundError("quote index", "")
	}

	s.quotes[index] = q
	s.version++

	return nil
}

// Apply merges plan into the list and reports how many records changed.
func (s *QuoteStore) Apply(plan MergePlan) (updated, added int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes, updated, added = ApplyPlan(s.quotes, plan)
	if updated+added > 0 {
		s.version++
	}

	return updated, added
}

// Snapshot returns a copy of the list.
func (s *QuoteStore) Snapshot() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// Len returns the number of quotes.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Dirty reports whether the list has changes that have not been saved.
func (s *QuoteStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version != s.saved
}
