package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

type stubRunner struct {
	result domain.SyncResult
	last   *domain.SyncResult
	ctx    context.Context
}

func (s *stubRunner) Sync(ctx context.Context) domain.SyncResult {
	s.ctx = ctx
	s.last = &s.result

	return s.result
}

func (s *stubRunner) Last() (domain.SyncResult, bool) {
	if s.last == nil {
		return domain.SyncResult{}, false
	}

	return *s.last, true
}

func syncEngine(runner SyncRunner) *gin.Engine {
	engine := gin.New()
	NewSyncHandler(runner).RegisterRoutes(engine.Group("/api/v1"))

	return engine
}

func TestSyncHandler_Trigger(t *testing.T) {
	runner := &stubRunner{result: domain.SyncResult{
		CycleID:   "01HXCYCLE",
		StartedAt: time.Now(),
		Fetched:   2,
		Added:     1,
		Updated:   1,
		Conflicts: []domain.Conflict{{Text: "A", LocalCategory: "X", RemoteCategory: "General"}},
		Saved:     true,
	}}
	engine := syncEngine(runner)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))

	require.Equal(t, http.StatusOK, w.Code)

	got := decode[dto.SyncResponse](t, w)
	assert.Equal(t, "01HXCYCLE", got.CycleID)
	assert.Equal(t, "merged", got.Outcome)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, "General", got.Conflicts[0].RemoteCategory)
	assert.NotNil(t, runner.ctx)
}

func TestSyncHandler_TriggerReportsContainedFailure(t *testing.T) {
	err := domain.NewUnavailableError("remote", "connection refused")
	engine := syncEngine(&stubRunner{result: domain.SyncResult{CycleID: "c", Err: err, Error: err.Error()}})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))

	require.Equal(t, http.StatusOK, w.Code)

	got := decode[dto.SyncResponse](t, w)
	assert.Equal(t, "unavailable", got.Outcome)
	assert.Contains(t, got.Error, "connection refused")
	assert.False(t, got.Saved)
}

func TestSyncHandler_Last(t *testing.T) {
	runner := &stubRunner{result: domain.SyncResult{CycleID: "c1", Err: errors.New("x"), Error: "x"}}
	engine := syncEngine(runner)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/last", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	runner.Sync(context.Background())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/last", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", decode[dto.SyncResponse](t, w).CycleID)
}
