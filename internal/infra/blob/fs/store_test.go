package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"propdesk/internal/blob/blobtest"
	"propdesk/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStoreContract(t *testing.T) {
	blobtest.Run(t, newTempStore(t))
}

func TestInvalidKeys(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "   ", "/abs", "../escape", "a/../../b", "x" + sidecarSuffix} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
	if _, err := store.Delete(ctx, "../x"); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected delete to reject traversal, got %v", err)
	}
}

func TestLayoutOnDisk(t *testing.T) {
	store := newTempStore(t)
	if _, err := store.Put(context.Background(), "snapshots/x.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	data := filepath.Join(store.Root(), "snapshots", "x.json")
	if _, err := os.Stat(data); err != nil {
		t.Fatalf("expected data file: %v", err)
	}
	if _, err := os.Stat(data + sidecarSuffix); err != nil {
		t.Fatalf("expected sidecar: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(data))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".upload-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestCorruptSidecar(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.Root(), "k.json"+sidecarSuffix), []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.Head(ctx, "k.json"); err == nil || errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if _, err := store.List(ctx, ""); err == nil {
		t.Fatal("expected list to surface decode error")
	}
}

func TestPresignURLAndDefaults(t *testing.T) {
	store := newTempStore(t)
	u, err := store.PresignURL(context.Background(), "snapshots/x.json", time.Minute)
	if err != nil || !strings.HasPrefix(u, "file://") || !strings.HasSuffix(u, "/snapshots/x.json") {
		t.Fatalf("unexpected url %q %v", u, err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	def, err := New("")
	if err != nil || def.Root() != DefaultRoot {
		t.Fatalf("expected default root, got %v %v", def, err)
	}
}
