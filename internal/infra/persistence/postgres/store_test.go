package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"propdesk/internal/infra/persistence/memory"
	"propdesk/internal/infra/persistence/postgres/testutil"
	"propdesk/pkg/domain"
)

func useStub(t *testing.T) *testutil.StubConn {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	return conn
}

func sample() domain.Snapshot {
	return domain.Snapshot{
		Propositions: []domain.Proposition{{ID: "proj_1", Name: "Accès à l'eau"}},
		Risks:        []domain.Risk{{ID: "risk_1", PropositionID: "proj_1", Probability: domain.LevelMedium}},
	}
}

func TestNewStoreCreatesStateTable(t *testing.T) {
	conn := useStub(t)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.DB() == nil {
		t.Fatal("expected db handle")
	}
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS STATE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got %v", conn.Execs)
	}
	if store.Read().Total() != 0 {
		t.Fatal("expected empty snapshot")
	}
}

func TestReplacePersistsAndReloads(t *testing.T) {
	conn := useStub(t)
	ctx := context.Background()
	store, err := NewStore(ctx, "ignored")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Replace(ctx, sample()); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := len(conn.Rows("state")); got != 11 {
		t.Fatalf("expected 11 buckets persisted, got %d", got)
	}
	if err := store.Replace(ctx, sample()); err != nil {
		t.Fatalf("second Replace: %v", err)
	}
	if got := len(conn.Rows("state")); got != 11 {
		t.Fatalf("expected upsert to keep 11 buckets, got %d", got)
	}

	reloaded, err := NewStore(ctx, "ignored")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	snap := reloaded.Read()
	if len(snap.Propositions) != 1 || len(snap.Risks) != 1 {
		t.Fatalf("expected snapshot reloaded, got %+v", snap)
	}
	if snap.Risks[0].Probability != domain.LevelMedium {
		t.Fatalf("unexpected risk %+v", snap.Risks[0])
	}
}

func TestReplaceFailureKeepsSnapshot(t *testing.T) {
	conn := useStub(t)
	ctx := context.Background()
	store, err := NewStore(ctx, "ignored")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.FailCommit = true
	if err := store.Replace(ctx, sample()); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
	if store.Read().Total() != 0 {
		t.Fatal("failed replace must not change the snapshot")
	}
	conn.FailCommit = false
	conn.FailBegin = true
	if err := store.Replace(ctx, sample()); err == nil {
		t.Fatal("expected begin error")
	}
}

func TestUndoRollsBackOnPersistFailure(t *testing.T) {
	conn := useStub(t)
	ctx := context.Background()
	store, err := NewStore(ctx, "ignored", memory.WithHistoryDepth(3))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Replace(ctx, sample()); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	conn.FailExec = true
	if ok, err := store.Undo(ctx); err == nil || ok {
		t.Fatalf("expected undo failure, got ok=%v err=%v", ok, err)
	}
	if store.Read().Total() != 2 {
		t.Fatal("expected snapshot restored after failed undo")
	}
	conn.FailExec = false
	if ok, err := store.Undo(ctx); err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if ok, err := store.Redo(ctx); err != nil || !ok {
		t.Fatalf("redo: ok=%v err=%v", ok, err)
	}
}

func TestNewStoreErrors(t *testing.T) {
	ctx := context.Background()

	conn := useStub(t)
	conn.FailPing = true
	if _, err := NewStore(ctx, ""); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}

	conn = useStub(t)
	conn.FailExec = true
	if _, err := NewStore(ctx, ""); err == nil || !strings.Contains(err.Error(), "state table") {
		t.Fatalf("expected ddl error, got %v", err)
	}

	conn = useStub(t)
	conn.Tables["state"] = []map[string]any{{"bucket": "risks", "payload": []byte("{")}}
	if _, err := NewStore(ctx, ""); err == nil || !strings.Contains(err.Error(), "decode risks") {
		t.Fatalf("expected decode error, got %v", err)
	}

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, sql.ErrConnDone })
	defer restore()
	if _, err := NewStore(ctx, ""); err == nil {
		t.Fatal("expected open error")
	}
}
