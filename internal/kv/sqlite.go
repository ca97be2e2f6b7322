package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const sqliteBusyTimeout = 5000 // ms

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	partition  TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      BLOB    NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
	PRIMARY KEY (partition, key)
)`

// SQLite is a single-connection store; SQLite serialises writes anyway.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("kv: sqlite backend requires a file path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", sqliteBusyTimeout),
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: init: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, partition, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE partition = ? AND key = ?`,
		partition, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get: %w", err)
	}
	return value, nil
}

func (s *SQLite) Put(ctx context.Context, partition, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (partition, key, value, updated_at)
		VALUES (?, ?, ?, unixepoch())
		ON CONFLICT (partition, key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		partition, key, value,
	)
	if err != nil {
		return fmt.Errorf("sqlite: put: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
