package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// User-facing notices raised by the quote service.
const (
	MessageQuoteAdded     = "Quote added successfully!"
	MessageQuotesImported = "Quotes imported successfully!"
)

// QuoteService implements the user-facing quote use cases on top of the store.
type QuoteService struct {
	store     *QuoteStore
	prefs     ports.KeyValueStore
	session   ports.KeyValueStore
	remote    ports.RemoteQuoteSource
	notifier  ports.Notifier
	observers []ports.StoreObserver
	pushOnAdd bool
	intn      func(n int) int
	exec      *Executor

	pushes sync.WaitGroup
}

// QuoteServiceConfig contains the service's collaborators.
type QuoteServiceConfig struct {
	Store *QuoteStore

	// Preferences is durable storage for the selected category.
	Preferences ports.KeyValueStore

	// Session holds per-process state such as the last viewed quote.
	Session ports.KeyValueStore

	// Remote receives the full list after a manual add when PushOnAdd is set. Optional.
	Remote    ports.RemoteQuoteSource
	PushOnAdd bool

	Notifier  ports.Notifier
	Observers []ports.StoreObserver
	Logger    *slog.Logger

	// Intn picks the random quote index; defaults to math/rand/v2.IntN.
	Intn func(n int) int
}

// NewQuoteService creates a quote service.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	intn := cfg.Intn
	if intn == nil {
		intn = rand.IntN //nolint:gosec // display order, not security
	}

	return &QuoteService{
		store:     cfg.Store,
		prefs:     cfg.Preferences,
		session:   cfg.Session,
		remote:    cfg.Remote,
		notifier:  cfg.Notifier,
		observers: cfg.Observers,
		pushOnAdd: cfg.PushOnAdd,
		intn:      intn,
		exec:      NewExecutor(cfg.Logger),
	}
}

// List returns the quotes in category, or every quote for "all" or "".
func (s *QuoteService) List(_ context.Context, category string) []domain.Quote {
	return domain.FilterByCategory(s.store.Snapshot(), category)
}

// Categories returns the distinct categories in first-seen order.
func (s *QuoteService) Categories(_ context.Context) []string {
	return domain.Categories(s.store.Snapshot())
}

// RandomQuote picks a quote from category and records it as the last viewed quote.
func (s *QuoteService) RandomQuote(ctx context.Context, category string) (domain.Quote, error) {
	quotes := s.List(ctx, category)
	if len(quotes) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote", category)
	}

	q := quotes[s.intn(len(quotes))]

	if s.session != nil {
		data, err := json.Marshal(q)
		if err == nil {
			err = s.session.Set(ctx, ports.KeyLastViewedQuote, data)
		}

		if err != nil {
			logging.FromContextOr(ctx, s.exec.logger).WarnContext(ctx, "recording last viewed quote failed",
				slog.Any("error", err),
			)
		}
	}

	return q, nil
}

// LastViewed returns the quote most recently returned by RandomQuote in this process.
func (s *QuoteService) LastViewed(ctx context.Context) (domain.Quote, error) {
	if s.session == nil {
		return domain.Quote{}, domain.NewNotFoundError("key", ports.KeyLastViewedQuote)
	}

	raw, err := s.session.Get(ctx, ports.KeyLastViewedQuote)
	if err != nil {
		return domain.Quote{}, err
	}

	var q domain.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Quote{}, domain.NewPersistenceError("decode", ports.KeyLastViewedQuote, err)
	}

	return q, nil
}

// SelectedCategory returns the persisted category filter, "all" when unset or unreadable.
func (s *QuoteService) SelectedCategory(ctx context.Context) string {
	if s.prefs == nil {
		return domain.AllCategories
	}

	raw, err := s.prefs.Get(ctx, ports.KeyLastSelectedCategory)
	if err != nil {
		if !domain.IsNotFound(err) {
			logging.FromContextOr(ctx, s.exec.logger).WarnContext(ctx, "reading selected category failed",
				slog.Any("error", err),
			)
		}

		return domain.AllCategories
	}

	if category := string(raw); category != "" {
		return category
	}

	return domain.AllCategories
}

// SetSelectedCategory persists the category filter.
func (s *QuoteService) SetSelectedCategory(ctx context.Context, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return domain.NewValidationError("category", "must not be empty")
	}

	if s.prefs == nil {
		return nil
	}

	if err := s.prefs.Set(ctx, ports.KeyLastSelectedCategory, []byte(category)); err != nil {
		return domain.NewPersistenceError("write", ports.KeyLastSelectedCategory, err)
	}

	return nil
}

// AddQuote appends a user-entered quote. Text and category are trimmed and
// must be non-empty; a text that already exists is rejected with ErrConflict.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	op := Operation[domain.Quote, struct{}, domain.Quote, domain.Quote]{
		Name: "add_quote",
		Validate: func(_ context.Context, q domain.Quote) error {
			if err := q.Validate(); err != nil {
				return err
			}

			if _, _, exists := s.store.FindByText(q.Text); exists {
				return domain.NewConflictError("quote", "text already exists")
			}

			return nil
		},
		Verify: func(_ context.Context, q domain.Quote, _ struct{}) (domain.Quote, error) {
			q.ID = ulid.Make().String()

			return q, nil
		},
		Archive: func(ctx context.Context, _ domain.Quote, q domain.Quote) error {
			if !s.store.AddIfAbsent(q) {
				return domain.NewConflictError("quote", "text already exists")
			}

			return s.store.Save(ctx)
		},
		Respond: func(_ context.Context, _ domain.Quote, q domain.Quote) (domain.Quote, error) {
			return q, nil
		},
	}

	q, err := Execute(ctx, s.exec, op, domain.Quote{Text: text, Category: category}.Normalize())
	if err != nil {
		return domain.Quote{}, err
	}

	s.changed(ctx, MessageQuoteAdded)

	if s.pushOnAdd {
		s.push(ctx)
	}

	return q, nil
}

// Export renders every quote as a JSON array indented by two spaces.
func (s *QuoteService) Export(_ context.Context) ([]byte, error) {
	quotes := s.store.Snapshot()
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return data, nil
}

// ImportResult reports what an import did.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Import appends quotes from a JSON array. Any invalid record rejects the
// whole document; records whose text already exists are skipped.
func (s *QuoteService) Import(ctx context.Context, data []byte) (ImportResult, error) {
	var res ImportResult

	op := Operation[[]byte, []domain.Quote, []domain.Quote, ImportResult]{
		Name: "import_quotes",
		Perform: func(_ context.Context, data []byte) ([]domain.Quote, error) {
			var quotes []domain.Quote
			if err := json.Unmarshal(data, &quotes); err != nil {
				return nil, domain.NewValidationError("document", "must be a JSON array of quotes: "+err.Error())
			}

			return quotes, nil
		},
		Verify: func(_ context.Context, _ []byte, quotes []domain.Quote) ([]domain.Quote, error) {
			out := make([]domain.Quote, len(quotes))

			for i, q := range quotes {
				q = q.Normalize()
				if err := q.Validate(); err != nil {
					return nil, domain.NewValidationErrorWithValue(
						fmt.Sprintf("quotes[%d]", i), err.Error(), q.Text)
				}

				if q.ID == "" {
					q.ID = ulid.Make().String()
				}

				out[i] = q
			}

			return out, nil
		},
		Archive: func(ctx context.Context, _ []byte, quotes []domain.Quote) error {
			for _, q := range quotes {
				if s.store.AddIfAbsent(q) {
					res.Added++
				} else {
					res.Skipped++
				}
			}

			if res.Added == 0 {
				return nil
			}

			return s.store.Save(ctx)
		},
		Respond: func(context.Context, []byte, []domain.Quote) (ImportResult, error) {
			return res, nil
		},
	}

	if _, err := Execute(ctx, s.exec, op, data); err != nil {
		return ImportResult{}, err
	}

	if res.Added > 0 {
		s.changed(ctx, MessageQuotesImported)
	}

	return res, nil
}

func (s *QuoteService) changed(ctx context.Context, message string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, ports.NotificationInfo, message)
	}

	quotes := s.store.Snapshot()
	for _, o := range s.observers {
		o.QuotesChanged(ctx, quotes)
	}
}

func (s *QuoteService) push(ctx context.Context) {
	if s.remote == nil {
		return
	}

	quotes := s.store.Snapshot()
	ctx = context.WithoutCancel(ctx)
	logger := logging.FromContextOr(ctx, s.exec.logger)

	s.pushes.Go(func() {
		if err := s.remote.PushLocal(ctx, quotes); err != nil {
			logger.WarnContext(ctx, "pushing quotes failed", slog.Any("error", err))
		}
	})
}

// Wait blocks until background pushes have returned.
func (s *QuoteService) Wait() {
	s.pushes.Wait()
}
