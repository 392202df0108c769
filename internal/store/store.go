// Package store persists the symbol graph to SQLite: nodes, edges,
// occurrences, file metadata, and the ancillary UI tables, behind a
// batched-write, single-writer-transaction API.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Querier is the subset of *sql.DB / *sql.Tx the store's read/write
// helpers need, letting every helper run unmodified whether it's called
// directly against the pool or inside WithTransaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps a SQLite connection pool opened against one project's
// graph database.
type Store struct {
	db     *sql.DB
	q      Querier
	dbPath string
}

// Open opens (creating if necessary) the on-disk database for project,
// under the user's cache directory.
func Open(project string) (*Store, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return OpenPath(filepath.Join(dir, project+".db"))
}

// OpenPath opens the database at dbPath directly.
func OpenPath(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one writer, WAL lets readers overlap
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	return &Store{db: db, q: db, dbPath: dbPath}, nil
}

// OpenMemory opens a private, schema-initialized in-memory database, for
// tests and one-shot analyses that never persist to disk.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate in-memory store: %w", err)
	}
	return &Store{db: db, q: db, dbPath: ":memory:"}, nil
}

func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "codestory"), nil
}

// DB returns the underlying connection pool, for callers that need raw
// access (migrations tooling, diagnostics).
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the database file path, or ":memory:".
func (s *Store) Path() string { return s.dbPath }

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// isBusy reports whether err is (or wraps) a SQLITE_BUSY failure.
func isBusy(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLITE_BUSY")
}

// WithTransaction runs fn against a tx-scoped Store. fn's writes commit
// only if fn returns nil; any error rolls the transaction back. Per the
// storage failure contract, the transaction is retried once on
// SQLITE_BUSY before giving up.
func (s *Store) WithTransaction(ctx context.Context, fn func(txStore *Store) error) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			if isBusy(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("begin transaction: %w", err)
		}
		txStore := &Store{db: s.db, q: tx, dbPath: s.dbPath}
		if err := fn(txStore); err != nil {
			tx.Rollback()
			if isBusy(err) && attempt == 0 {
				lastErr = err
				continue
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			if isBusy(err) && attempt == 0 {
				lastErr = err
				continue
			}
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
	return fmt.Errorf("transaction failed after retry: %w", lastErr)
}

// Now returns the current unix timestamp, used for modification_time and
// accessed_at columns.
func Now() int64 { return time.Now().Unix() }

// ErrNotFound is returned by single-row lookups that find nothing.
var ErrNotFound = errors.New("store: not found")
