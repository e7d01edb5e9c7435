package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Open opens (or creates) the history database at path with the production
// pragmas applied and the schema in place. The caller must blank-import the
// driver:
//
//	import _ "modernc.org/sqlite"
//	store, err := history.Open("db/history.db")
func Open(path string) (*Store, error) {
	return open(path, 0)
}

func open(path string, maxConns int) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("history: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	// Must be limited before any statement runs: each connection to an
	// in-memory database is a separate database.
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}

	return NewStore(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// OpenMemory opens an in-memory history store for testing, closed
// automatically via t.Cleanup.
func OpenMemory(t testing.TB) *Store {
	t.Helper()
	s, err := open(":memory:", 1)
	if err != nil {
		t.Fatalf("history.OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
