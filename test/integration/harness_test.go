//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/quotesync/internal/adapters/http"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/adapters/notify"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// remotePost is one record served by the fake remote.
type remotePost struct {
	ID       int    `json:"id"`
	Body     string `json:"body"`
	Category string `json:"category,omitempty"`
}

// fakeRemote stands in for the posts API.
type fakeRemote struct {
	server *httptest.Server

	mu     sync.Mutex
	status int
	body   []byte
	pushes [][]byte
	header http.Header

	fetches atomic.Int32
	delay   atomic.Int64
}

func newFakeRemote() *fakeRemote {
	r := &fakeRemote{status: http.StatusOK, body: []byte("[]")}
	r.server = httptest.NewServer(http.HandlerFunc(r.handle))

	return r
}

func (r *fakeRemote) handle(w http.ResponseWriter, req *http.Request) {
	if d := time.Duration(r.delay.Load()); d > 0 {
		time.Sleep(d)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if req.Method == http.MethodPost {
		data, _ := io.ReadAll(req.Body)
		r.pushes = append(r.pushes, data)
		w.WriteHeader(http.StatusCreated)

		return
	}

	r.fetches.Add(1)
	r.header = req.Header.Clone()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	_, _ = w.Write(r.body)
}

func (r *fakeRemote) serve(posts []remotePost) {
	if posts == nil {
		posts = []remotePost{}
	}

	data, _ := json.Marshal(posts)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.status, r.body = http.StatusOK, data
}

func (r *fakeRemote) fail(status int, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status, r.body = status, []byte(body)
}

func (r *fakeRemote) lastHeader() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.header
}

func (r *fakeRemote) pushed() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([][]byte(nil), r.pushes...)
}

// world is a complete quotesync instance backed by sqlite and a fake remote.
type world struct {
	dir        string
	remote     *fakeRemote
	kv         storage.Store
	store      *app.QuoteStore
	hub        *notify.Hub
	service    *app.QuoteService
	reconciler *app.Reconciler
	api        *httptest.Server
}

func newWorld(ctx context.Context) (*world, error) {
	dir, err := os.MkdirTemp("", "quotesync-integration-*")
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	remote := newFakeRemote()

	kv, err := storage.OpenSQLite(ctx, filepath.Join(dir, "quotes.db"))
	if err != nil {
		remote.server.Close()
		return nil, err
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     remote.server.URL,
		ServiceName: "fake-remote",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{MaxFailures: 1000, Timeout: time.Second, HalfOpenLimit: 1},
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	source := acl.NewRemoteQuoteClient(acl.RemoteQuoteClientConfig{Client: client, Logger: logger})

	store := app.NewQuoteStore(kv, app.WithSeed(nil))
	store.Load(ctx)

	hub := notify.NewHub(notify.Config{TransientTTL: time.Minute, Logger: logger})
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewSyncMetrics(registry)

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:       store,
		Preferences: kv,
		Session:     storage.NewMemoryStore(),
		Remote:      source,
		PushOnAdd:   true,
		Notifier:    hub,
		Observers:   []ports.StoreObserver{metrics},
		Logger:      logger,
	})

	reconciler := app.NewReconciler(store, source, hub, logger,
		app.WithStoreObservers(metrics),
		app.WithSyncObservers(metrics),
	)

	health := ports.NewHealthRegistry()
	_ = health.Register(kv)
	_ = health.RegisterOptional(source)

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        logger,
		ServiceName:   "quotesync-integration",
		Health:        handlers.NewHealthHandler(health, handlers.NewBuildInfo("test", "", ""), registry),
		Quotes:        handlers.NewQuoteHandler(service),
		Sync:          handlers.NewSyncHandler(reconciler),
		Notifications: handlers.NewNotificationHandler(hub),
		Timeout:       5 * time.Second,
	})

	return &world{
		dir:        dir,
		remote:     remote,
		kv:         kv,
		store:      store,
		hub:        hub,
		service:    service,
		reconciler: reconciler,
		api:        httptest.NewServer(engine),
	}, nil
}

// reopen drops the in-memory list and loads it back from storage.
func (w *world) reopen(ctx context.Context) *app.QuoteStore {
	store := app.NewQuoteStore(w.kv, app.WithSeed(nil))
	store.Load(ctx)

	return store
}

func (w *world) storedRaw(ctx context.Context) []byte {
	raw, err := w.kv.Get(ctx, ports.KeyQuotes)
	if err != nil {
		return nil
	}

	return raw
}

func (w *world) close() {
	w.service.Wait()
	w.reconciler.Wait()
	w.api.Close()
	w.remote.server.Close()
	_ = w.kv.Close()
	_ = os.RemoveAll(w.dir)
}
