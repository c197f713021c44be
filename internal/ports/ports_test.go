package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(context.Context) error { return s.err }

type slowChecker struct{ name string }

func (c *slowChecker) Name() string { return c.name }

func (c *slowChecker) Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(&stubChecker{name: "storage"}))

	err := registry.RegisterOptional(&stubChecker{name: "storage"})

	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "storage")
	assert.Len(t, registry.entries, 1)
}

func TestCheckAll_NoCheckers(t *testing.T) {
	result := NewHealthRegistry().CheckAll(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
	assert.False(t, result.Timestamp.IsZero())
}

func TestCheckAll_StatusFolding(t *testing.T) {
	tests := []struct {
		name       string
		storageErr error
		remoteErr  error
		want       HealthStatus
	}{
		{"all healthy", nil, nil, HealthStatusHealthy},
		{"optional remote down degrades", nil, errors.New("connection refused"), HealthStatusDegraded},
		{"critical storage down is unhealthy", errors.New("disk full"), nil, HealthStatusUnhealthy},
		{"both down is unhealthy", errors.New("disk full"), errors.New("connection refused"), HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			require.NoError(t, registry.Register(&stubChecker{name: "storage", err: tt.storageErr}))
			require.NoError(t, registry.RegisterOptional(&stubChecker{name: "remote", err: tt.remoteErr}))

			result := registry.CheckAll(context.Background())

			assert.Equal(t, tt.want, result.Status)
			require.Len(t, result.Checks, 2)
			assert.True(t, result.Checks["remote"].Optional)
			assert.False(t, result.Checks["storage"].Optional)

			if tt.remoteErr != nil {
				assert.Equal(t, tt.remoteErr.Error(), result.Checks["remote"].Message)
			}
		})
	}
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(&slowChecker{name: "slow"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["slow"].Message, "context canceled")
}
