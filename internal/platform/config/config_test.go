package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quotesync", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://jsonplaceholder.typicode.com", cfg.Remote.BaseURL)
	assert.Equal(t, "/posts", cfg.Remote.PostsPath)
	assert.Equal(t, "General", cfg.Remote.DefaultCategory)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, DefaultSyncInterval, cfg.Sync.Interval)
	assert.Zero(t, cfg.Sync.CycleTimeout)
	assert.False(t, cfg.Sync.PushAfterMerge)
	assert.True(t, cfg.Sync.PushOnAdd)
	assert.True(t, cfg.Store.SeedDefaults)
	assert.Equal(t, 3*time.Second, cfg.Notify.TransientTTL)

	require.NoError(t, cfg.Validate(), "defaults must validate")
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("APP_SYNC_INTERVAL", "1m")
	t.Setenv("APP_SYNC_PUSH_AFTER_MERGE", "true")
	t.Setenv("APP_STORAGE_S3_USE_PATH_STYLE", "true")
	t.Setenv("APP_REMOTE_BASE_URL", "http://localhost:3000")
	t.Setenv("APP_STORE_SEED_DEFAULTS", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)
	assert.True(t, cfg.Sync.PushAfterMerge)
	assert.True(t, cfg.Storage.S3.UsePathStyle)
	assert.Equal(t, "http://localhost:3000", cfg.Remote.BaseURL)
	assert.False(t, cfg.Store.SeedDefaults)
}

func TestLoad_ProfileFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "test.yaml"), []byte(`
app:
  environment: test
storage:
  driver: memory
sync:
  interval: 5s
`), 0o600))

	t.Chdir(dir)

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Sync.Interval)
}

func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := Load("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "quotesync", cfg.App.Name)
}

func TestEnvKeyMapper(t *testing.T) {
	mapper := envKeyMapper(defaults())

	assert.Equal(t, "server.read_timeout", mapper("APP_SERVER_READ_TIMEOUT"))
	assert.Equal(t, "client.circuit_breaker.max_failures", mapper("APP_CLIENT_CIRCUIT_BREAKER_MAX_FAILURES"))
	assert.Equal(t, "unknown.key", mapper("APP_UNKNOWN_KEY"))
}
