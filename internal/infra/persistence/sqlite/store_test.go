package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"propdesk/internal/infra/persistence/memory"
	"propdesk/pkg/domain"
)

func sample() domain.Snapshot {
	return domain.Snapshot{
		Propositions: []domain.Proposition{{ID: "proj_1", Name: "Accès à l'eau"}},
		Theories:     []domain.TheoryOfChange{{ID: "theo_1", PropositionID: "proj_1"}},
		BudgetLines:  []domain.BudgetLine{{
			ID: "b1", PropositionID: "proj_1", Quantity: 100, UnitCost: 150,
			TotalAmount: 15000, FunderShare: 10000, OwnShare: 5000,
		}},
	}
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if store.Loaded() {
		t.Fatal("expected fresh database")
	}
	if err := store.Replace(context.Background(), sample()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file missing: %v", err)
	}
	_ = store.Close()

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if !reloaded.Loaded() {
		t.Fatal("expected persisted state")
	}
	snap := reloaded.Read()
	if len(snap.Propositions) != 1 || snap.Propositions[0].Name != "Accès à l'eau" {
		t.Fatalf("unexpected propositions %+v", snap.Propositions)
	}
	if snap.BudgetLines[0].OwnShare != 5000 {
		t.Fatalf("expected own share preserved, got %+v", snap.BudgetLines[0])
	}
	if reloaded.Path() != path || reloaded.DB() == nil {
		t.Fatal("expected path and db handle")
	}
}

func TestSQLiteStoreEmptySnapshotCountsAsLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := store.Replace(context.Background(), domain.Snapshot{}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = store.Close()

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if !reloaded.Loaded() || reloaded.Read().Total() != 0 {
		t.Fatalf("expected empty persisted snapshot, loaded=%v total=%d", reloaded.Loaded(), reloaded.Read().Total())
	}
}

func TestSQLiteStoreUndoPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, memory.WithHistoryDepth(5))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	ctx := context.Background()
	if err := store.Replace(ctx, sample()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if ok, err := store.Undo(ctx); err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	_ = store.Close()

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if got := reloaded.Read().Total(); got != 0 {
		t.Fatalf("expected undo persisted as empty snapshot, got %d records", got)
	}
}

func TestSQLiteStorePersistErrorKeepsSnapshot(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	_ = store.DB().Close()
	if err := store.Replace(context.Background(), sample()); err == nil {
		t.Fatal("expected persist error on closed db")
	}
	if store.Read().Total() != 0 {
		t.Fatal("failed replace must not change the in-memory snapshot")
	}
}
