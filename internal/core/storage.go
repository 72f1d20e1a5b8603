package core

import (
	"context"
	"fmt"

	"propdesk/internal/infra/persistence/memory"
	"propdesk/internal/infra/persistence/postgres"
	"propdesk/internal/infra/persistence/sqlite"
	"propdesk/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (default)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageOptions selects and configures the store backend.
type StorageOptions struct {
	Driver       StorageDriver
	SQLitePath   string
	PostgresDSN  string
	HistoryDepth int
}

// OpenPersistentStore opens the backend named by opts.Driver. An empty
// driver selects the memory store.
func OpenPersistentStore(ctx context.Context, opts StorageOptions) (domain.PersistentStore, error) {
	memOpts := []memory.Option{memory.WithHistoryDepth(opts.HistoryDepth)}
	switch opts.Driver {
	case "", StorageMemory:
		return memory.NewStore(memOpts...), nil
	case StorageSQLite:
		return sqlite.NewStore(opts.SQLitePath, memOpts...)
	case StoragePostgres:
		return postgres.NewStore(ctx, opts.PostgresDSN, memOpts...)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", opts.Driver)
	}
}

// IsEmpty reports whether a store currently holds no records.
func IsEmpty(store domain.EntityStore) bool {
	return store.Read().Total() == 0
}
