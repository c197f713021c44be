package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

const sqliteTable = "kv"

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single connection; concurrent writers would otherwise see SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, sqliteDialect(sqliteTable))
}
