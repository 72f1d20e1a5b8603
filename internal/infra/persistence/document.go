package persistence

import (
	"encoding/json"
	"errors"
	"fmt"

	"propdesk/pkg/domain"
)

// ErrEmptyDocument is returned when a document carries none of the buckets.
var ErrEmptyDocument = errors.New("document holds no known buckets")

// MarshalDocument renders s as a single JSON object keyed by bucket name.
func MarshalDocument(s domain.Snapshot) ([]byte, error) {
	payloads, err := Encode(s)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]json.RawMessage, len(payloads))
	for _, p := range payloads {
		doc[p.Bucket] = p.Data
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalDocument is the inverse of MarshalDocument. Unknown keys are
// ignored and missing buckets decode as empty collections.
func UnmarshalDocument(data []byte) (domain.Snapshot, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode document: %w", err)
	}
	dec := NewDecoder()
	for _, bucket := range Buckets {
		if err := dec.Add(bucket, doc[bucket]); err != nil {
			return domain.Snapshot{}, err
		}
	}
	snap, loaded := dec.Snapshot()
	if !loaded {
		return domain.Snapshot{}, ErrEmptyDocument
	}
	return snap, nil
}
