package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/mocks"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.0.0", "abc123", "2024-01-15T10:00:00Z")

	assert.Equal(t, "1.0.0", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/live", nil)

	handler.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		result     *ports.HealthResult
		wantStatus int
		wantBody   string
	}{
		{
			name: "healthy",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{"storage:sqlite": {Status: ports.HealthStatusHealthy}},
			},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name: "remote down only degrades",
			result: &ports.HealthResult{
				Status: ports.HealthStatusDegraded,
				Checks: map[string]*ports.CheckResult{
					"remote:quote-server": {Status: ports.HealthStatusUnhealthy, Optional: true},
				},
			},
			wantStatus: http.StatusOK,
			wantBody:   "degraded",
		},
		{
			name: "storage down",
			result: &ports.HealthResult{
				Status: ports.HealthStatusUnhealthy,
				Checks: map[string]*ports.CheckResult{"storage:sqlite": {Status: ports.HealthStatusUnhealthy}},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := mocks.NewMockHealthRegistry(t)
			registry.EXPECT().CheckAll(mock.Anything).Return(tt.result)

			handler := NewHealthHandler(registry, BuildInfo{}, nil)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/-/ready", nil)

			handler.Readiness(c)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp readinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Status)
		})
	}
}

func TestHealthHandler_ReadinessWithRegistry(t *testing.T) {
	storage := mocks.NewMockHealthChecker(t)
	storage.EXPECT().Name().Return("storage:memory")
	storage.EXPECT().Check(mock.Anything).Return(nil)

	remote := mocks.NewMockHealthChecker(t)
	remote.EXPECT().Name().Return("remote:quote-server")
	remote.EXPECT().Check(mock.Anything).Return(errors.New("connection refused"))

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(storage))
	require.NoError(t, registry.RegisterOptional(remote))

	engine := gin.New()
	NewHealthHandler(registry, BuildInfo{}, nil).RegisterRoutes(engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp readinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	require.Contains(t, resp.Checks, "remote:quote-server")
	assert.Equal(t, "connection refused", resp.Checks["remote:quote-server"].Message)
}

func TestHealthHandler_BuildAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "quotesync_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	engine := gin.New()
	NewHealthHandler(mocks.NewMockHealthRegistry(t), NewBuildInfo("1.2.3", "deadbeef", "now"), reg).RegisterRoutes(engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/build", nil))

	var bi BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bi))
	assert.Equal(t, "1.2.3", bi.Version)
	assert.Equal(t, "deadbeef", bi.Commit)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quotesync_test_total 1")
}
