// Package seed bundles the sample portfolio shown on first start.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"propdesk/internal/core"
	"propdesk/pkg/domain"
)

//go:embed dataset.yaml
var dataset []byte

// Load decodes the bundled dataset. Unknown keys are rejected so the file
// cannot drift from the record shapes.
func Load() (domain.Snapshot, error) {
	return Decode(dataset)
}

// Decode parses a dataset document in the bundled YAML layout.
func Decode(raw []byte) (domain.Snapshot, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var snap domain.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode seed dataset: %w", err)
	}
	return snap, nil
}

// Importer installs a snapshot; *core.Service satisfies it.
type Importer interface {
	Snapshot() domain.Snapshot
	Import(ctx context.Context, snapshot domain.Snapshot) (core.RepairReport, error)
	ResetHistory()
}

// IfEmpty imports the bundled dataset when target holds no records. The seed
// is not an undo step. It reports whether the seed was applied.
func IfEmpty(ctx context.Context, target Importer) (bool, error) {
	if target.Snapshot().Total() > 0 {
		return false, nil
	}
	snap, err := Load()
	if err != nil {
		return false, err
	}
	if _, err := target.Import(ctx, snap); err != nil {
		return false, fmt.Errorf("import seed dataset: %w", err)
	}
	target.ResetHistory()
	return true, nil
}
