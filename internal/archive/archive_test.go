package archive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	blobcore "propdesk/internal/blob/core"
	"propdesk/internal/core"
	"propdesk/internal/infra/blob/memory"
	"propdesk/pkg/domain"
)

type steppingClock struct{ now time.Time }

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func seededService(t *testing.T) *core.Service {
	t.Helper()
	svc := core.NewInMemoryService()
	_, err := svc.Import(context.Background(), domain.Snapshot{
		Propositions: []domain.Proposition{{ID: "P1", Name: "Eau potable"}},
		Theories:     []domain.TheoryOfChange{{ID: "T1", PropositionID: "P1"}},
		BudgetLines:  []domain.BudgetLine{{ID: "B1", PropositionID: "P1", Quantity: 2, UnitCost: 10, TotalAmount: 20, FunderShare: 20}},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	return svc
}

func TestExportListRestore(t *testing.T) {
	ctx := context.Background()
	clock := &steppingClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	svc := seededService(t)
	a := New(memory.New(), svc, WithClock(clock))

	first, err := a.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if first.Key != "snapshots/20240301T080001.000Z.json" || first.Records != 3 {
		t.Fatalf("unexpected entry %+v", first)
	}
	if _, err := svc.Delete(ctx, domain.EntityProposition, "P1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second, err := a.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	entries, err := a.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != second.Key || entries[1].Records != 3 || entries[0].Records != 0 {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	if !entries[1].CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created at not parsed from key: %+v", entries[1])
	}

	if _, err := a.Restore(ctx, strings.TrimPrefix(first.Key, Prefix)); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !svc.Snapshot().Contains(domain.EntityBudgetLine, "B1") {
		t.Fatal("expected restored budget line")
	}
	if _, err := a.Restore(ctx, ""); err != nil {
		t.Fatalf("restore latest: %v", err)
	}
	if svc.Snapshot().Total() != 0 {
		t.Fatal("expected newest (empty) archive restored")
	}
}

func TestRestoreRepairsOrphans(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	doc := `{"propositions":[{"id":"P1","name":"x"}],"objectives":[{"id":"O1","theory_id":"gone"}]}`
	if _, err := store.Put(ctx, Prefix+"20240101T000000.000Z.json", strings.NewReader(doc), blobcore.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	svc := core.NewInMemoryService()
	report, err := New(store, svc).Restore(ctx, "")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if report.Dropped[domain.EntityObjective] != 1 || svc.Snapshot().Total() != 1 {
		t.Fatalf("expected orphan dropped, got %+v", report)
	}
	entries, _ := New(store, svc).List(ctx)
	if len(entries) != 1 || entries[0].Records != -1 {
		t.Fatalf("expected unknown record count without metadata, got %+v", entries)
	}
}

func TestRestoreErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	a := New(store, core.NewInMemoryService())
	if _, err := a.Restore(ctx, ""); !errors.Is(err, ErrNoArchives) {
		t.Fatalf("expected ErrNoArchives, got %v", err)
	}
	if _, err := a.Restore(ctx, "missing.json"); !errors.Is(err, blobcore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Put(ctx, Prefix+"bad.json", strings.NewReader("{"), blobcore.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := a.Restore(ctx, "bad.json"); err == nil {
		t.Fatal("expected decode error")
	}
	entries, err := a.List(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("non-timestamp keys must be ignored, got %+v %v", entries, err)
	}
}

func TestExportCollision(t *testing.T) {
	ctx := context.Background()
	fixed := core.ClockFunc(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })
	a := New(memory.New(), seededService(t), WithClock(fixed))
	if _, err := a.Export(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := a.Export(ctx); !errors.Is(err, blobcore.ErrExists) {
		t.Fatalf("expected ErrExists on same-millisecond export, got %v", err)
	}
}
