package domain

import "context"

// EntityStore holds the current snapshot. Read never blocks on I/O; Replace
// may persist the snapshot and reports the failure if it cannot.
type EntityStore interface {
	Read() Snapshot
	Replace(ctx context.Context, next Snapshot) error
}

// HistoryStore is implemented by stores that retain replaced snapshots.
type HistoryStore interface {
	EntityStore
	Undo(ctx context.Context) (bool, error)
	Redo(ctx context.Context) (bool, error)
}

// PersistentStore is an EntityStore backed by a durable medium.
type PersistentStore interface {
	HistoryStore
	Close() error
}
