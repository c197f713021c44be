package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotesync/internal/adapters/notify"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// components is the object graph shared by serve and the one-shot commands.
type components struct {
	storage    storage.Store
	store      *app.QuoteStore
	remote     *acl.RemoteQuoteClient
	hub        *notify.Hub
	service    *app.QuoteService
	reconciler *app.Reconciler
}

// wire opens storage, loads the quote list and builds the services.
// metrics may be nil.
func (a *App) wire(ctx context.Context, metrics *telemetry.SyncMetrics) (*components, error) {
	cfg := a.cfg
	logger := a.logger

	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Remote.BaseURL,
		ServiceName: cfg.Remote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating HTTP client: %w", err), kv.Close())
	}

	remote := acl.NewRemoteQuoteClient(acl.RemoteQuoteClientConfig{
		Client:          httpClient,
		PostsPath:       cfg.Remote.PostsPath,
		DefaultCategory: cfg.Remote.DefaultCategory,
		Logger:          logger,
	})

	var storeOpts []app.StoreOption
	if !cfg.Store.SeedDefaults {
		storeOpts = append(storeOpts, app.WithSeed(nil))
	}

	store := app.NewQuoteStore(kv, storeOpts...)
	store.Load(logging.WithContext(ctx, logger))

	hub := notify.NewHub(notify.Config{
		TransientTTL: cfg.Notify.TransientTTL,
		History:      cfg.Notify.History,
		Logger:       logger,
	})

	var observers []ports.StoreObserver
	if metrics != nil {
		observers = append(observers, metrics)
		metrics.QuotesChanged(ctx, store.Snapshot())
	}

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:       store,
		Preferences: kv,
		Session:     storage.NewMemoryStore(),
		Remote:      remote,
		PushOnAdd:   cfg.Sync.PushOnAdd,
		Notifier:    hub,
		Observers:   observers,
		Logger:      logger,
	})

	opts := []app.ReconcilerOption{
		app.WithPushAfterMerge(cfg.Sync.PushAfterMerge),
		app.WithStoreObservers(observers...),
	}
	if metrics != nil {
		opts = append(opts, app.WithSyncObservers(metrics))
	}

	return &components{
		storage:    kv,
		store:      store,
		remote:     remote,
		hub:        hub,
		service:    service,
		reconciler: app.NewReconciler(store, remote, hub, logger, opts...),
	}, nil
}

// close drains background pushes and releases storage.
func (c *components) close(logger *slog.Logger) {
	c.service.Wait()
	c.reconciler.Wait()

	if err := c.storage.Close(); err != nil {
		logger.Error("closing storage", slog.Any("error", err))
	}
}

// printNotices writes the notifications raised during a one-shot command.
func printNotices(w io.Writer, hub *notify.Hub) {
	for _, n := range hub.All() {
		_, _ = fmt.Fprintf(w, "%s: %s\n", n.Kind, n.Message)
	}
}
