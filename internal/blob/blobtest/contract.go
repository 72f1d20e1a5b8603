// Package blobtest holds the behaviour every blob driver must share.
package blobtest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"propdesk/internal/blob/core"
)

// Run exercises put, get, head, list and delete against an empty store.
func Run(t *testing.T, store core.Store) {
	t.Helper()
	ctx := context.Background()

	info, err := store.Put(ctx, "snapshots/a.json", strings.NewReader(`{"propositions":[]}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"records": "0"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "snapshots/a.json" || info.Size != 19 {
		t.Fatalf("unexpected put info %+v", info)
	}
	if _, err := store.Put(ctx, "snapshots/a.json", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := store.Put(ctx, "other/b.txt", strings.NewReader("b"), core.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}

	head, err := store.Head(ctx, "snapshots/a.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ContentType != "application/json" || head.Metadata["records"] != "0" || head.Size != 19 {
		t.Fatalf("unexpected head %+v", head)
	}

	got, rc, err := store.Get(ctx, "snapshots/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(body) != `{"propositions":[]}` {
		t.Fatalf("unexpected body %q %v", body, err)
	}
	if got.ETag == "" || got.ETag != head.ETag {
		t.Fatalf("etag mismatch %q vs %q", got.ETag, head.ETag)
	}

	if _, _, err := store.Get(ctx, "snapshots/missing.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
	if _, err := store.Head(ctx, "snapshots/missing.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from head, got %v", err)
	}

	list, err := store.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "snapshots/a.json" {
		t.Fatalf("unexpected list %+v", list)
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 2 || all[0].Key != "other/b.txt" {
		t.Fatalf("expected ordered full listing, got %+v %v", all, err)
	}

	removed, err := store.Delete(ctx, "snapshots/a.json")
	if err != nil || !removed {
		t.Fatalf("delete: %v %v", removed, err)
	}
	removed, err = store.Delete(ctx, "snapshots/a.json")
	if err != nil || removed {
		t.Fatalf("second delete should report false: %v %v", removed, err)
	}
	if list, _ := store.List(ctx, "snapshots/"); len(list) != 0 {
		t.Fatalf("expected empty listing after delete, got %+v", list)
	}
}
