package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// OpenPostgres connects with dsn and ensures table exists.
func OpenPostgres(ctx context.Context, dsn, table string) (*SQLStore, error) {
	if err := validTableName(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return newSQLStore(ctx, db, postgresDialect(table))
}
