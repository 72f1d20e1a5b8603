package persistence

import (
	"strings"
	"testing"

	"propdesk/pkg/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := domain.Snapshot{
		Propositions: []domain.Proposition{{ID: "p1", Name: "Eau potable"}},
		BudgetLines:  []domain.BudgetLine{{ID: "b1", PropositionID: "p1", Quantity: 2, UnitCost: 5, TotalAmount: 10, FunderShare: 10}},
	}
	payloads, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(payloads) != len(Buckets) {
		t.Fatalf("expected %d payloads, got %d", len(Buckets), len(payloads))
	}
	for _, p := range payloads {
		if string(p.Data) == "null" {
			t.Fatalf("bucket %s encoded as null", p.Bucket)
		}
	}

	dec := NewDecoder()
	for _, p := range payloads {
		if err := dec.Add(p.Bucket, p.Data); err != nil {
			t.Fatalf("add %s: %v", p.Bucket, err)
		}
	}
	out, ok := dec.Snapshot()
	if !ok {
		t.Fatal("expected loaded snapshot")
	}
	if len(out.Propositions) != 1 || out.Propositions[0].Name != "Eau potable" {
		t.Fatalf("unexpected propositions %+v", out.Propositions)
	}
	if out.BudgetLines[0] != in.BudgetLines[0] {
		t.Fatalf("budget line mismatch: %+v", out.BudgetLines[0])
	}
}

func TestDecoderSkipsUnknownAndEmpty(t *testing.T) {
	dec := NewDecoder()
	if err := dec.Add("organisms", []byte(`[{"id":"x"}]`)); err != nil {
		t.Fatalf("unknown bucket: %v", err)
	}
	if err := dec.Add("risks", nil); err != nil {
		t.Fatalf("empty payload: %v", err)
	}
	if _, ok := dec.Snapshot(); ok {
		t.Fatal("expected nothing loaded")
	}
}

func TestDecoderReportsBadPayload(t *testing.T) {
	err := NewDecoder().Add("risks", []byte(`{`))
	if err == nil || !strings.Contains(err.Error(), "decode risks") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
