package memory

import (
	"context"
	"testing"

	"propdesk/pkg/domain"
)

func snapshotWith(names ...string) domain.Snapshot {
	var s domain.Snapshot
	for i, name := range names {
		s.Propositions = append(s.Propositions, domain.Proposition{ID: string(rune('a' + i)), Name: name})
	}
	return s
}

func TestStoreReplaceUndoRedo(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if got := store.Read().Total(); got != 0 {
		t.Fatalf("expected empty store, got %d records", got)
	}
	if err := store.Replace(ctx, snapshotWith("one")); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.Replace(ctx, snapshotWith("one", "two")); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if undo, redo := store.History(); undo != 2 || redo != 0 {
		t.Fatalf("expected 2/0 history, got %d/%d", undo, redo)
	}

	ok, err := store.Undo(ctx)
	if err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if got := len(store.Read().Propositions); got != 1 {
		t.Fatalf("expected 1 proposition after undo, got %d", got)
	}
	ok, err = store.Redo(ctx)
	if err != nil || !ok {
		t.Fatalf("redo: ok=%v err=%v", ok, err)
	}
	if got := len(store.Read().Propositions); got != 2 {
		t.Fatalf("expected 2 propositions after redo, got %d", got)
	}
	if ok, _ := store.Redo(ctx); ok {
		t.Fatal("expected nothing to redo")
	}
}

func TestStoreReplaceClearsRedo(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.Replace(ctx, snapshotWith("one"))
	if _, err := store.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	_ = store.Replace(ctx, snapshotWith("other"))
	if _, redo := store.History(); redo != 0 {
		t.Fatalf("expected redo history cleared, got %d", redo)
	}
}

func TestStoreHistoryDepthBounded(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithHistoryDepth(2))
	for i := 0; i < 5; i++ {
		if err := store.Replace(ctx, snapshotWith("p")); err != nil {
			t.Fatalf("replace %d: %v", i, err)
		}
	}
	if undo, _ := store.History(); undo != 2 {
		t.Fatalf("expected history bounded to 2, got %d", undo)
	}

	none := NewStore(WithHistoryDepth(0))
	_ = none.Replace(ctx, snapshotWith("p"))
	if ok, _ := none.Undo(ctx); ok {
		t.Fatal("expected undo disabled with zero depth")
	}
}

func TestStoreReplaceHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewStore()
	if err := store.Replace(ctx, snapshotWith("late")); err == nil {
		t.Fatal("expected context error")
	}
	if store.Read().Total() != 0 {
		t.Fatal("expected snapshot untouched")
	}
}

func TestStoreImportExportIsolation(t *testing.T) {
	store := NewStore(WithSnapshot(snapshotWith("seed")))
	exported := store.ExportState()
	exported.Propositions[0].Name = "mutated"
	if store.Read().Propositions[0].Name != "seed" {
		t.Fatal("export must not alias store state")
	}

	_ = store.Replace(context.Background(), snapshotWith("next"))
	store.ImportState(exported)
	if undo, redo := store.History(); undo != 0 || redo != 0 {
		t.Fatalf("expected import to reset history, got %d/%d", undo, redo)
	}
	if store.Read().Propositions[0].Name != "mutated" {
		t.Fatal("expected imported snapshot")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestStoreClearHistory(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if err := store.Replace(ctx, domain.Snapshot{Risks: []domain.Risk{{ID: "r1"}}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.Replace(ctx, domain.Snapshot{Risks: []domain.Risk{{ID: "r2"}}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := store.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	store.ClearHistory()
	if undo, redo := store.History(); undo != 0 || redo != 0 {
		t.Fatalf("expected empty history, got %d/%d", undo, redo)
	}
	if got := store.Read().Risks; len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("expected current snapshot kept, got %+v", got)
	}
}
