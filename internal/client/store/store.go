// Package store keeps the client's local state in SQLite: a profile cache,
// the course cache, optimistic progress and the durable sync queue.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

type Store struct {
	db *sql.DB
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the database file at path, applies pragmas and migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between
	// the flush loop and new enqueues.
	db.SetMaxOpenConns(1)

	for _, stmt := range pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", stmt, err)
		}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return New(db), nil
}

// Migrate applies the embedded schema.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply local migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
