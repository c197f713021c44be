package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/mocks"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

type serviceFixture struct {
	store    *QuoteStore
	kv       *storage.MemoryStore
	remote   *mocks.MockRemoteQuoteSource
	notifier *mocks.MockNotifier
	observer *recordingObserver
	svc      *QuoteService
}

func newServiceFixture(t *testing.T, pushOnAdd bool, local ...domain.Quote) *serviceFixture {
	t.Helper()

	store, kv := storeWith(t, local...)
	f := &serviceFixture{
		store:    store,
		kv:       kv,
		remote:   mocks.NewMockRemoteQuoteSource(t),
		notifier: mocks.NewMockNotifier(t),
		observer: &recordingObserver{},
	}

	f.svc = NewQuoteService(QuoteServiceConfig{
		Store:       store,
		Preferences: kv,
		Session:     storage.NewMemoryStore(),
		Remote:      f.remote,
		PushOnAdd:   pushOnAdd,
		Notifier:    f.notifier,
		Observers:   []ports.StoreObserver{f.observer},
		Logger:      discardLogger(),
		Intn:        func(n int) int { return n - 1 },
	})

	return f
}

func TestQuoteService_AddQuote(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		errCheck func(error) bool
	}{
		{name: "trimmed and added", text: "  New one ", category: " Fresh "},
		{name: "empty text", text: "   ", category: "X", errCheck: domain.IsValidation},
		{name: "empty category", text: "B", category: "", errCheck: domain.IsValidation},
		{name: "duplicate text", text: "A", category: "Y", errCheck: domain.IsConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, false, q("A", "X"))

			if tt.errCheck == nil {
				f.notifier.EXPECT().Notify(mock.Anything, ports.NotificationInfo, MessageQuoteAdded).Once()
			}

			got, err := f.svc.AddQuote(context.Background(), tt.text, tt.category)

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err), "unexpected error: %v", err)
				assert.Equal(t, 1, f.store.Len())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "New one", got.Text)
			assert.Equal(t, "Fresh", got.Category)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, 2, f.store.Len())
			assert.False(t, f.store.Dirty())
			assert.Len(t, f.observer.changes, 1)
		})
	}
}

func TestQuoteService_AddQuotePushes(t *testing.T) {
	f := newServiceFixture(t, true, q("A", "X"))

	f.notifier.EXPECT().Notify(mock.Anything, ports.NotificationInfo, MessageQuoteAdded).Once()
	f.remote.EXPECT().PushLocal(mock.Anything, mock.MatchedBy(func(quotes []domain.Quote) bool {
		return len(quotes) == 2 && quotes[1].Text == "B"
	})).Return(errors.New("offline")).Once()

	_, err := f.svc.AddQuote(context.Background(), "B", "Y")
	f.svc.Wait()

	require.NoError(t, err)
}

func TestQuoteService_ListAndCategories(t *testing.T) {
	f := newServiceFixture(t, false, q("A", "X"), q("B", "Y"), q("C", "X"))
	ctx := context.Background()

	assert.Len(t, f.svc.List(ctx, domain.AllCategories), 3)
	assert.Len(t, f.svc.List(ctx, ""), 3)
	assert.Equal(t, []domain.Quote{q("A", "X"), q("C", "X")}, f.svc.List(ctx, "X"))
	assert.Empty(t, f.svc.List(ctx, "nope"))
	assert.Equal(t, []string{"X", "Y"}, f.svc.Categories(ctx))
}

func TestQuoteService_RandomAndLastViewed(t *testing.T) {
	f := newServiceFixture(t, false, q("A", "X"), q("B", "Y"))
	ctx := context.Background()

	_, err := f.svc.LastViewed(ctx)
	assert.True(t, domain.IsNotFound(err))

	got, err := f.svc.RandomQuote(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, q("B", "Y"), got)

	last, err := f.svc.LastViewed(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, last)

	_, err = f.svc.RandomQuote(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestQuoteService_SelectedCategory(t *testing.T) {
	f := newServiceFixture(t, false, q("A", "X"))
	ctx := context.Background()

	assert.Equal(t, domain.AllCategories, f.svc.SelectedCategory(ctx))

	require.NoError(t, f.svc.SetSelectedCategory(ctx, " X "))
	assert.Equal(t, "X", f.svc.SelectedCategory(ctx))

	err := f.svc.SetSelectedCategory(ctx, "  ")
	assert.True(t, domain.IsValidation(err))
}

func TestQuoteService_Export(t *testing.T) {
	f := newServiceFixture(t, false, q("A", "X"))

	data, err := f.svc.Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "[\n  {\n    \"text\": \"A\",\n    \"category\": \"X\"\n  }\n]", string(data))
}

func TestQuoteService_Import(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     ImportResult
		total    int
		errCheck func(error) bool
	}{
		{
			name:  "appends new and skips existing",
			body:  `[{"text":"A","category":"Z"},{"text":"B","category":"Y"},{"text":"B","category":"W"}]`,
			want:  ImportResult{Added: 1, Skipped: 2},
			total: 2,
		},
		{
			name:  "nothing new",
			body:  `[{"text":"A","category":"X"}]`,
			want:  ImportResult{Skipped: 1},
			total: 1,
		},
		{
			name:     "not json",
			body:     `{oops`,
			total:    1,
			errCheck: domain.IsValidation,
		},
		{
			name:     "one invalid record rejects all",
			body:     `[{"text":"B","category":"Y"},{"text":"","category":"Y"}]`,
			total:    1,
			errCheck: domain.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, false, q("A", "X"))

			if tt.errCheck == nil && tt.want.Added > 0 {
				f.notifier.EXPECT().Notify(mock.Anything, ports.NotificationInfo, MessageQuotesImported).Once()
			}

			got, err := f.svc.Import(context.Background(), []byte(tt.body))

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err), "unexpected error: %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.Equal(t, tt.total, f.store.Len())
		})
	}
}

func TestQuoteService_ExportImportRoundTrip(t *testing.T) {
	src := newServiceFixture(t, false, q("A", "X"), q("B", "Y"))
	data, err := src.svc.Export(context.Background())
	require.NoError(t, err)

	dst := newServiceFixture(t, false, q("C", "Z"))
	dst.notifier.EXPECT().Notify(mock.Anything, ports.NotificationInfo, MessageQuotesImported).Once()

	res, err := dst.svc.Import(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)

	var stored []domain.Quote
	raw, err := dst.kv.Get(context.Background(), ports.KeyQuotes)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Len(t, stored, 3)
}
