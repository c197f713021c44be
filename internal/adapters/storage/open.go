package storage

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Store is a key-value backend that can report its health.
type Store interface {
	ports.KeyValueStore
	ports.HealthChecker
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*S3Store)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLite.Path)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.Postgres.DSN, cfg.Postgres.Table)
	case config.DriverS3:
		return OpenS3(ctx, S3Options{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			Prefix:       cfg.S3.Prefix,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
