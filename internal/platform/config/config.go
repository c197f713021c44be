// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultSyncInterval is the pull period between reconciliation cycles.
	DefaultSyncInterval = 30 * time.Second

	// DefaultNotifyTTL is how long a transient notification stays visible.
	DefaultNotifyTTL = 3 * time.Second

	DefaultNotifyHistory = 50
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	DriverMemory   = "memory"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Remote    RemoteConfig    `koanf:"remote"    validate:"required"`
	Storage   StorageConfig   `koanf:"storage"   validate:"required"`
	Store     StoreConfig     `koanf:"store"`
	Sync      SyncConfig      `koanf:"sync"`
	Notify    NotifyConfig    `koanf:"notify"    validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for the remote endpoint.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for idempotent requests.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// RemoteConfig describes the endpoint quotes are pulled from and pushed to.
type RemoteConfig struct {
	BaseURL         string `koanf:"base_url"         validate:"required,url"`
	Name            string `koanf:"name"             validate:"required"`
	PostsPath       string `koanf:"posts_path"       validate:"required,startswith=/"`
	DefaultCategory string `koanf:"default_category" validate:"required"`
}

// StorageConfig selects and configures the durable key-value backend.
type StorageConfig struct {
	Driver   string         `koanf:"driver"   validate:"required,oneof=sqlite postgres s3 memory"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	S3       S3Config       `koanf:"s3"`
}

// SQLiteConfig is used when Driver is "sqlite".
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig is used when Driver is "postgres".
type PostgresConfig struct {
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table" validate:"required"`
}

// S3Config is used when Driver is "s3". Each key is stored as one object under Prefix.
type S3Config struct {
	Bucket       string `koanf:"bucket"`
	Region       string `koanf:"region"`
	Endpoint     string `koanf:"endpoint" validate:"omitempty,url"`
	Prefix       string `koanf:"prefix"`
	UsePathStyle bool   `koanf:"use_path_style"`
}

// StoreConfig controls the in-memory quote list.
type StoreConfig struct {
	// SeedDefaults loads the built-in quotes when storage holds none.
	SeedDefaults bool `koanf:"seed_defaults"`
}

// SyncConfig controls the periodic reconciliation loop.
type SyncConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Interval       time.Duration `koanf:"interval"         validate:"required_if=Enabled true,omitempty,min=1s"`
	CycleTimeout   time.Duration `koanf:"cycle_timeout"    validate:"min=0"`
	PushAfterMerge bool          `koanf:"push_after_merge"`
	PushOnAdd      bool          `koanf:"push_on_add"`
}

// NotifyConfig controls the notification hub.
type NotifyConfig struct {
	TransientTTL time.Duration `koanf:"transient_ttl" validate:"required,min=100ms"`
	History      int           `koanf:"history"       validate:"required,min=1"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotesync",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotesync.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotesync",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "10s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"remote.base_url":         "https://jsonplaceholder.typicode.com",
		"remote.name":             "quote-server",
		"remote.posts_path":       "/posts",
		"remote.default_category": "General",

		"storage.driver":               DriverSQLite,
		"storage.sqlite.path":          "./data/quotesync.db",
		"storage.postgres.dsn":         "",
		"storage.postgres.table":       "quotesync_kv",
		"storage.s3.bucket":            "",
		"storage.s3.region":            "us-east-1",
		"storage.s3.endpoint":          "",
		"storage.s3.prefix":            "quotesync/",
		"storage.s3.use_path_style":    false,

		"store.seed_defaults": true,

		"sync.enabled":          true,
		"sync.interval":         DefaultSyncInterval.String(),
		"sync.cycle_timeout":    "0s",
		"sync.push_after_merge": false,
		"sync.push_on_add":      true,

		"notify.transient_ttl": DefaultNotifyTTL.String(),
		"notify.history":       DefaultNotifyHistory,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix), including any found in .env
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	// Values already in the environment win over .env.
	_ = godotenv.Load(".env")

	k := koanf.New(".")

	defs := defaults()

	err := k.Load(confmap.Provider(defs, "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		err := loadFileIfExists(k, fmt.Sprintf("configs/%s.yaml", profile))
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", envKeyMapper(defs)), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper maps APP_SYNC_PUSH_AFTER_MERGE to sync.push_after_merge.
// Known keys are matched exactly so that underscores inside a key survive;
// unknown variables fall back to treating every underscore as a separator.
func envKeyMapper(known map[string]any) func(string) string {
	flat := make(map[string]string, len(known))
	for key := range known {
		flat[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		if key, ok := flat[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

// loadFileIfExists loads a YAML config file if it exists.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
