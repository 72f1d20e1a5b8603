// Package persistence holds the bucket layout shared by the durable stores
// and the archive format: one JSON array per record collection.
package persistence

import (
	"encoding/json"
	"fmt"

	"propdesk/pkg/domain"
)

// Buckets lists the persisted bucket names in a stable order.
var Buckets = []string{
	"propositions",
	"theories",
	"objectives",
	"results",
	"activities",
	"target_audiences",
	"risks",
	"action_plans",
	"budget_lines",
	"communications",
	"capitalizations",
}

// targets returns a pointer to the snapshot collection backing each bucket.
func targets(s *domain.Snapshot) map[string]any {
	return map[string]any{
		"propositions":     &s.Propositions,
		"theories":         &s.Theories,
		"objectives":       &s.Objectives,
		"results":          &s.Results,
		"activities":       &s.Activities,
		"target_audiences": &s.TargetAudiences,
		"risks":            &s.Risks,
		"action_plans":     &s.ActionPlans,
		"budget_lines":     &s.BudgetLines,
		"communications":   &s.Communications,
		"capitalizations":  &s.Capitalizations,
	}
}

// Payload is one encoded bucket.
type Payload struct {
	Bucket string
	Data   []byte
}

// Encode marshals every collection of s into its bucket, in Buckets order.
// Empty collections encode as [] so a reload never sees null.
func Encode(s domain.Snapshot) ([]Payload, error) {
	t := targets(&s)
	out := make([]Payload, 0, len(Buckets))
	for _, bucket := range Buckets {
		data, err := json.Marshal(t[bucket])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		if string(data) == "null" {
			data = []byte("[]")
		}
		out = append(out, Payload{Bucket: bucket, Data: data})
	}
	return out, nil
}

// Decoder accumulates bucket payloads into a snapshot.
type Decoder struct {
	snapshot domain.Snapshot
	targets  map[string]any
	loaded   int
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.targets = targets(&d.snapshot)
	return d
}

// Add decodes one bucket. Unknown buckets and empty payloads are skipped.
func (d *Decoder) Add(bucket string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	target, ok := d.targets[bucket]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	d.loaded++
	return nil
}

// Snapshot returns the decoded snapshot and whether any bucket was loaded.
func (d *Decoder) Snapshot() (domain.Snapshot, bool) {
	return d.snapshot, d.loaded > 0
}
