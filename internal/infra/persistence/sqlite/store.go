// Package sqlite persists the entity store to a single SQLite table holding
// one JSON payload per bucket.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"propdesk/internal/infra/persistence"
	"propdesk/internal/infra/persistence/memory"
	"propdesk/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.PersistentStore = (*Store)(nil)

// DefaultPath is used when no database path is configured.
const DefaultPath = "propdesk.db"

// Store snapshots the in-memory state to SQLite after every replace, undo,
// and redo, and reloads it on open.
type Store struct {
	*memory.Store
	db     *sql.DB
	mu     sync.Mutex
	path   string
	loaded bool
}

// NewStore opens (or creates) the database at path and hydrates the memory
// store from it.
func NewStore(path string, opts ...memory.Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(opts...), db: db, path: path}
	if err := s.load(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Loaded reports whether the database held a persisted snapshot when it was
// opened. An emptied portfolio still counts as loaded.
func (s *Store) Loaded() bool { return s.loaded }

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	dec := persistence.NewDecoder()
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := dec.Add(bucket, payload); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if snapshot, ok := dec.Snapshot(); ok {
		s.ImportState(snapshot)
		s.loaded = true
	}
	return nil
}

func (s *Store) persist(ctx context.Context, snapshot domain.Snapshot) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payloads, err := persistence.Encode(snapshot)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, p := range payloads {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, p.Bucket, p.Data); err != nil {
			return fmt.Errorf("upsert %s: %w", p.Bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Replace writes next to SQLite and then installs it in memory. A failed
// write leaves the current snapshot in place.
func (s *Store) Replace(ctx context.Context, next domain.Snapshot) error {
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	return s.Store.Replace(ctx, next)
}

// Undo steps back in memory and persists the restored snapshot. A failed
// write is rolled back in memory.
func (s *Store) Undo(ctx context.Context) (bool, error) {
	moved, err := s.Store.Undo(ctx)
	if err != nil || !moved {
		return moved, err
	}
	if err := s.persist(ctx, s.Read()); err != nil {
		_, _ = s.Store.Redo(context.WithoutCancel(ctx))
		return false, err
	}
	return true, nil
}

// Redo steps forward in memory and persists the restored snapshot.
func (s *Store) Redo(ctx context.Context) (bool, error) {
	moved, err := s.Store.Redo(ctx)
	if err != nil || !moved {
		return moved, err
	}
	if err := s.persist(ctx, s.Read()); err != nil {
		_, _ = s.Store.Undo(context.WithoutCancel(ctx))
		return false, err
	}
	return true, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
