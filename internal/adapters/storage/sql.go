package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// dialect captures the few statements that differ between SQL engines.
type dialect struct {
	name      string
	createDDL string
	selectSQL string
	upsertSQL string
}

func sqliteDialect(table string) dialect {
	return dialect{
		name: "sqlite",
		createDDL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now'))
		)`, table),
		selectSQL: fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, table),
		upsertSQL: fmt.Sprintf(`INSERT INTO %s(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now')`, table),
	}
}

func postgresDialect(table string) dialect {
	return dialect{
		name: "postgres",
		createDDL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, table),
		selectSQL: fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, table),
		upsertSQL: fmt.Sprintf(`INSERT INTO %s(key, value) VALUES($1, $2)
			ON CONFLICT(key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, table),
	}
}

// SQLStore is a key-value table reached through database/sql.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, d.createDDL); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create %s kv table: %w", d.name, err)
	}

	return &SQLStore{db: db, d: d}, nil
}

// Get returns the value for key or domain.ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, s.d.selectSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("key", key)
	}

	if err != nil {
		return nil, domain.NewPersistenceError("read", key, err)
	}

	return value, nil
}

// Set upserts value under key.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.d.upsertSQL, key, value); err != nil {
		return domain.NewPersistenceError("write", key, err)
	}

	return nil
}

// Name identifies the backend in health responses.
func (s *SQLStore) Name() string {
	return "storage:" + s.d.name
}

// Check pings the database.
func (s *SQLStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func validTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return domain.NewValidationErrorWithValue("table", "must be a plain SQL identifier", table)
	}

	return nil
}
