package core

import (
	"testing"

	"propdesk/pkg/domain"
)

func TestBuildDashboard(t *testing.T) {
	s := treeSnapshot()
	s.Propositions = append(s.Propositions, domain.Proposition{ID: "P3", Name: "Sans statut"})
	d := BuildDashboard(s)
	if d.Propositions != 3 || d.Accepted != 1 {
		t.Fatalf("unexpected counts %+v", d)
	}
	if d.ByStatus[domain.StatusDrafting] != 1 || d.ByStatus[domain.StatusSubmitted] != 1 {
		t.Fatalf("unexpected status breakdown %+v", d.ByStatus)
	}
	if d.Budget.Total != 27300 || d.Budget.FunderShare != 22300 || d.Budget.OwnShare != 5000 {
		t.Fatalf("unexpected totals %+v", d.Budget)
	}
	if len(d.Rows) != 3 || d.Rows[0].Budget.Total != 27000 || d.Rows[1].Budget.Total != 300 || d.Rows[2].Budget.Lines != 0 {
		t.Fatalf("unexpected per-proposition totals %+v", d.Rows)
	}
}

func TestBuildPropositionDetail(t *testing.T) {
	d, ok := BuildPropositionDetail(treeSnapshot(), "P1")
	if !ok {
		t.Fatal("expected P1")
	}
	if !sameIDs(ids(d.Theories), "T1") || !sameIDs(ids(d.Objectives), "O1", "O2") ||
		!sameIDs(ids(d.Results), "R1", "R2") || !sameIDs(ids(d.Activities), "A1", "A2") ||
		!sameIDs(ids(d.ActionPlans), "AP1", "AP2") || !sameIDs(ids(d.BudgetLines), "B1", "B2") {
		t.Fatalf("unexpected subtree %+v", d)
	}
	if len(d.TargetAudiences) != 1 || len(d.Risks) != 1 || len(d.Communications) != 1 || len(d.Capitalizations) != 1 {
		t.Fatalf("unexpected leaves %+v", d)
	}
	if d.Budget.Total != 27000 {
		t.Fatalf("unexpected budget %+v", d.Budget)
	}
	if _, ok := BuildPropositionDetail(treeSnapshot(), "missing"); ok {
		t.Fatal("expected missing proposition")
	}
}
