package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite handle, the ent SQL driver used for migration and
// query building, and the global event sequence.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// Open connects to the SQLite database at dsn, tunes it, creates missing
// tables and seeds the sequence counter.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps pragmas in force and serializes appends.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	ctx := context.Background()
	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		drv.Close()
		return nil, err
	}
	return &Store{db: db, drv: drv, seq: seq}, nil
}

// DB exposes the raw handle, mostly for tests and ad-hoc inspection.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.drv.Close() }

func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

func (s *Store) ProjectionRepo() ProjectionRepo {
	return &projectionRepo{db: s.db}
}

func (s *Store) QuestionRepo() QuestionRepo {
	return &questionRepo{db: s.db}
}

// pragmas are applied in order on the single connection.
var pragmas = []struct{ name, value string }{
	{"journal_mode", "WAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
	{"synchronous", "NORMAL"},
}

func applyPragmas(db *sql.DB) error {
	for _, p := range pragmas {
		stmt := fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	return nil
}

// DefaultDBPath picks the database file: $LEARNLENS_DB if set, otherwise
// learnlens/learnlens.db under $XDG_DATA_HOME (default ~/.local/share).
// The parent directory is created.
func DefaultDBPath() (string, error) {
	if p, ok := os.LookupEnv("LEARNLENS_DB"); ok && p != "" {
		return p, EnsureDir(p)
	}

	base, ok := os.LookupEnv("XDG_DATA_HOME")
	if !ok || base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(base, "learnlens", "learnlens.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
