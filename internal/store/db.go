package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned when the database has no schema yet.
var ErrNotInitialized = errors.New("database not initialized: run 'stockrank init' first")

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// pragmas run on every new connection. busy_timeout lets the watch daemon
// and a concurrent CLI invocation wait on each other's write locks.
var pragmas = []struct{ stmt, what string }{
	{"PRAGMA foreign_keys = ON", "enable foreign keys"},
	{"PRAGMA journal_mode = WAL", "enable WAL mode"},
	{"PRAGMA busy_timeout = 5000", "set busy timeout"},
}

// Store is the stockrank database: catalogue, orders and report snapshots.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath. ":memory:" gives a private in-memory
// database, which tests use heavily. The schema is not created here; see
// Migrate.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the connection for diagnostics such as PRAGMA quick_check.
func (s *Store) DB() *sql.DB {
	return s.db
}

// wrapErr annotates err with msg, mapping missing-table errors to
// ErrNotInitialized.
func wrapErr(err error, msg string) error {
	if isMissingTable(err) {
		return fmt.Errorf("%s: %w", msg, ErrNotInitialized)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
