package domain

import (
	"errors"
	"testing"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Propositions:    []Proposition{{ID: "P1", Name: "Eau potable"}},
		Theories:        []TheoryOfChange{{ID: "T1", PropositionID: "P1"}},
		Objectives:      []Objective{{ID: "O1", TheoryID: "T1"}},
		Results:         []Result{{ID: "R1", ObjectiveID: "O1"}},
		Activities:      []Activity{{ID: "A1", ResultID: "R1"}},
		ActionPlans:     []ActionPlanEntry{{ID: "AP1", ActivityID: "A1"}},
		BudgetLines:     []BudgetLine{{ID: "B1", PropositionID: "P1", ActivityID: "A1"}},
		TargetAudiences: []TargetAudience{{ID: "TA1", PropositionID: "P1"}, {ID: "TA2", PropositionID: "P1"}},
		Risks:           []Risk{{ID: "RK1", PropositionID: "P1"}},
		Communications:  []Communication{{ID: "C1", PropositionID: "P1"}},
		Capitalizations: []Capitalization{{ID: "CP1", PropositionID: "P1"}},
	}
}

func TestSnapshotCountsAndLookup(t *testing.T) {
	s := sampleSnapshot()
	if s.Total() != 12 {
		t.Fatalf("expected 12 records, got %d", s.Total())
	}
	counts := s.Counts()
	if len(counts) != len(EntityTypes) || counts[EntityTargetAudience] != 2 {
		t.Fatalf("unexpected counts %+v", counts)
	}
	for _, et := range EntityTypes {
		for _, r := range s.Records(et) {
			if r.EntityType() != et {
				t.Fatalf("record %s reports %s, listed under %s", r.RecordID(), r.EntityType(), et)
			}
			if !s.Contains(et, r.RecordID()) {
				t.Fatalf("expected %s/%s to be found", et, r.RecordID())
			}
		}
	}
	if s.Contains(EntityRisk, "missing") || s.Records("bogus") != nil {
		t.Fatal("unexpected lookup hit")
	}
	if p, ok := s.FindProposition("P1"); !ok || p.Name != "Eau potable" {
		t.Fatalf("FindProposition: %+v %v", p, ok)
	}
	if _, ok := s.FindBudgetLine("nope"); ok {
		t.Fatal("expected missing budget line")
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	s := sampleSnapshot()
	c := s.Clone()
	c.Propositions[0].Name = "changed"
	c.Risks = append(c.Risks, Risk{ID: "RK2"})
	if s.Propositions[0].Name != "Eau potable" || len(s.Risks) != 1 {
		t.Fatal("clone shares state with the original")
	}
	if empty := (Snapshot{}).Clone(); empty.Propositions == nil || len(empty.Propositions) != 0 {
		t.Fatal("expected empty non-nil collections from clone")
	}
}

func TestParentOfMatchesParentField(t *testing.T) {
	s := sampleSnapshot()
	for _, et := range EntityTypes {
		for _, r := range s.Records(et) {
			parentType, parentID := ParentOf(r)
			if et == EntityProposition {
				if parentType != "" || parentID != "" || ParentField(et) != "" {
					t.Fatalf("proposition must not have a parent")
				}
				continue
			}
			if parentID == "" || !s.Contains(parentType, parentID) {
				t.Fatalf("%s/%s: parent %s/%s not found", et, r.RecordID(), parentType, parentID)
			}
			if ParentField(et) == "" {
				t.Fatalf("%s: expected a parent field", et)
			}
		}
	}
	if ParentField(EntityBudgetLine) != "proposition_id" || ParentField(EntityActionPlanEntry) != "activity_id" {
		t.Fatal("unexpected parent fields")
	}
}

func TestParseEntityType(t *testing.T) {
	for _, et := range EntityTypes {
		got, err := ParseEntityType(string(et))
		if err != nil || got != et {
			t.Fatalf("parse %s: %v %v", et, got, err)
		}
	}
	_, err := ParseEntityType("grant")
	if !errors.Is(err, ErrUnknownEntityType) {
		t.Fatalf("expected ErrUnknownEntityType, got %v", err)
	}
	var typed *UnknownEntityTypeError
	if !errors.As(err, &typed) || typed.Type != "grant" {
		t.Fatalf("expected typed error, got %v", err)
	}
}
