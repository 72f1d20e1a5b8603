// Package memory provides the in-memory entity store. It holds the current
// snapshot plus a bounded undo/redo history and backs every other store.
package memory

import (
	"context"
	"sync"

	"propdesk/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

// DefaultHistoryDepth bounds the number of snapshots kept for undo.
const DefaultHistoryDepth = 50

// Option configures a Store.
type Option func(*Store)

// WithHistoryDepth sets how many replaced snapshots are retained for undo.
// Zero disables history.
func WithHistoryDepth(depth int) Option {
	return func(s *Store) {
		if depth >= 0 {
			s.depth = depth
		}
	}
}

// WithSnapshot seeds the store with an initial snapshot.
func WithSnapshot(snapshot domain.Snapshot) Option {
	return func(s *Store) {
		s.current = snapshot
	}
}

// Store keeps the current snapshot. Snapshots are treated as immutable, so
// Read hands out the stored value without copying.
type Store struct {
	mu      sync.RWMutex
	current domain.Snapshot
	past    []domain.Snapshot
	future  []domain.Snapshot
	depth   int
}

// NewStore constructs an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{depth: DefaultHistoryDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the current snapshot.
func (s *Store) Read() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace installs next as the current snapshot and records the previous one
// for undo. Any redo history is discarded.
func (s *Store) Replace(ctx context.Context, next domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushPast(s.current)
	s.future = nil
	s.current = next
	return nil
}

func (s *Store) pushPast(snapshot domain.Snapshot) {
	if s.depth == 0 {
		return
	}
	s.past = append(s.past, snapshot)
	if over := len(s.past) - s.depth; over > 0 {
		s.past = append([]domain.Snapshot(nil), s.past[over:]...)
	}
}

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo.
func (s *Store) Undo(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.past) == 0 {
		return false, nil
	}
	prev := s.past[len(s.past)-1]
	s.past = s.past[:len(s.past)-1]
	s.future = append(s.future, s.current)
	s.current = prev
	return true, nil
}

// Redo reapplies the most recently undone snapshot.
func (s *Store) Redo(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.future) == 0 {
		return false, nil
	}
	next := s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]
	s.pushPast(s.current)
	s.current = next
	return true, nil
}

// History reports how many undo and redo steps are available.
func (s *Store) History() (undo, redo int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.past), len(s.future)
}

// ExportState returns a deep copy of the current snapshot for external persistence.
func (s *Store) ExportState() domain.Snapshot {
	return s.Read().Clone()
}

// ImportState replaces the current snapshot and clears the history.
func (s *Store) ImportState(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snapshot.Clone()
	s.past = nil
	s.future = nil
}

// ClearHistory drops every undo and redo step and keeps the current snapshot.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.past = nil
	s.future = nil
}

// Close implements domain.PersistentStore. The memory store holds no resources.
func (s *Store) Close() error { return nil }
