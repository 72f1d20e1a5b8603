// Package archive exports snapshots to a blob store and restores them
// through the repairing import path.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	blobcore "propdesk/internal/blob/core"
	"propdesk/internal/core"
	"propdesk/internal/infra/persistence"
	"propdesk/pkg/domain"
)

// Prefix is the key prefix every archive is written under.
const Prefix = "snapshots/"

const (
	keyLayout   = "20060102T150405.000Z"
	contentType = "application/json"
	metaRecords = "records"
)

// ErrNoArchives is returned by Restore("") when nothing has been exported.
var ErrNoArchives = errors.New("no archives available")

// Service is the part of core.Service the archiver needs.
type Service interface {
	Snapshot() domain.Snapshot
	Import(ctx context.Context, snapshot domain.Snapshot) (core.RepairReport, error)
}

// Entry describes one stored archive.
type Entry struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size_bytes"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url,omitempty"`
}

// Archiver writes and reads snapshot archives.
type Archiver struct {
	store  blobcore.Store
	svc    Service
	clock  core.Clock
	logger core.Logger
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithClock overrides the clock used to name archives.
func WithClock(clock core.Clock) Option {
	return func(a *Archiver) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithLogger sets the logger for export and restore events.
func WithLogger(logger core.Logger) Option {
	return func(a *Archiver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New returns an Archiver over store and svc.
func New(store blobcore.Store, svc Service, opts ...Option) *Archiver {
	a := &Archiver{store: store, svc: svc, clock: core.ClockFunc(nil), logger: core.NopLogger()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Export writes the current snapshot to snapshots/<UTC timestamp>.json.
func (a *Archiver) Export(ctx context.Context) (Entry, error) {
	snap := a.svc.Snapshot()
	doc, err := persistence.MarshalDocument(snap)
	if err != nil {
		return Entry{}, err
	}
	now := a.clock.Now().UTC()
	key := Prefix + now.Format(keyLayout) + ".json"
	info, err := a.store.Put(ctx, key, bytes.NewReader(doc), blobcore.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{metaRecords: strconv.Itoa(snap.Total())},
	})
	if err != nil {
		return Entry{}, fmt.Errorf("export %s: %w", key, err)
	}
	a.logger.Info("snapshot archived", "key", key, "records", snap.Total(), "driver", a.store.Driver())
	return Entry{Key: key, Size: info.Size, Records: snap.Total(), CreatedAt: now}, nil
}

// List returns archives newest first.
func (a *Archiver) List(ctx context.Context) ([]Entry, error) {
	infos, err := a.store.List(ctx, Prefix)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(infos))
	for _, info := range infos {
		created, ok := parseKey(info.Key)
		if !ok {
			continue
		}
		entry := Entry{Key: info.Key, Size: info.Size, CreatedAt: created, Records: -1}
		if n, err := strconv.Atoi(info.Metadata[metaRecords]); err == nil {
			entry.Records = n
		}
		if url, err := a.store.PresignURL(ctx, info.Key, 0); err == nil {
			entry.URL = url
		}
		out = append(out, entry)
	}
	slices.SortFunc(out, func(x, y Entry) int { return strings.Compare(y.Key, x.Key) })
	return out, nil
}

// Restore imports the archive at key. An empty key restores the newest
// archive; a bare file name is resolved under Prefix.
func (a *Archiver) Restore(ctx context.Context, key string) (core.RepairReport, error) {
	key, err := a.resolve(ctx, key)
	if err != nil {
		return core.RepairReport{}, err
	}
	_, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return core.RepairReport{}, fmt.Errorf("restore %s: %w", key, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return core.RepairReport{}, fmt.Errorf("read %s: %w", key, err)
	}
	snap, err := persistence.UnmarshalDocument(raw)
	if err != nil {
		return core.RepairReport{}, fmt.Errorf("restore %s: %w", key, err)
	}
	report, err := a.svc.Import(ctx, snap)
	if err != nil {
		return report, err
	}
	a.logger.Info("snapshot restored", "key", key, "records", snap.Total(), "repaired", report.Changed())
	return report, nil
}

func (a *Archiver) resolve(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key != "" {
		if !strings.HasPrefix(key, Prefix) {
			key = Prefix + key
		}
		return key, nil
	}
	entries, err := a.List(ctx)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrNoArchives
	}
	return entries[0].Key, nil
}

func parseKey(key string) (time.Time, bool) {
	name, ok := strings.CutPrefix(key, Prefix)
	if !ok {
		return time.Time{}, false
	}
	name, ok = strings.CutSuffix(name, ".json")
	if !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(keyLayout, name)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
