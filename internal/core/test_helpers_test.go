package core

import (
	"time"

	"propdesk/pkg/domain"
)

var fixedNow = time.UnixMilli(1_700_000_000_000).UTC()

func fixedClock() Clock {
	return ClockFunc(func() time.Time { return fixedNow })
}

func newTestEngine() *Engine {
	return NewEngine(fixedClock())
}

// treeSnapshot builds two propositions. P1 carries a full hierarchy with one
// record of every kind; P2 has a single theory and an objective so cascades
// can be checked for collateral damage.
func treeSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Propositions: []domain.Proposition{
			{ID: "P1", Name: "Eau potable", Status: domain.StatusAccepted},
			{ID: "P2", Name: "Agroécologie", Status: domain.StatusSubmitted},
		},
		Theories: []domain.TheoryOfChange{
			{ID: "T1", PropositionID: "P1"},
			{ID: "T2", PropositionID: "P2"},
		},
		Objectives: []domain.Objective{
			{ID: "O1", TheoryID: "T1", Kind: domain.ObjectiveGeneral},
			{ID: "O2", TheoryID: "T1", Kind: domain.ObjectiveSpecific},
			{ID: "O3", TheoryID: "T2", Kind: domain.ObjectiveGeneral},
		},
		Results: []domain.Result{
			{ID: "R1", ObjectiveID: "O1"},
			{ID: "R2", ObjectiveID: "O2"},
		},
		Activities: []domain.Activity{
			{ID: "A1", ResultID: "R1", Title: "Forages"},
			{ID: "A2", ResultID: "R2", Title: "Formations"},
		},
		ActionPlans: []domain.ActionPlanEntry{
			{ID: "AP1", ActivityID: "A1"},
			{ID: "AP2", ActivityID: "A2"},
		},
		BudgetLines: []domain.BudgetLine{
			{ID: "B1", ActivityID: "A1", PropositionID: "P1", Quantity: 100, UnitCost: 150, TotalAmount: 15000, FunderShare: 10000, OwnShare: 5000},
			{ID: "B2", PropositionID: "P1", Quantity: 6, UnitCost: 2000, TotalAmount: 12000, FunderShare: 12000},
			{ID: "B3", PropositionID: "P2", Quantity: 3, UnitCost: 100, TotalAmount: 300, FunderShare: 300},
		},
		TargetAudiences: []domain.TargetAudience{{ID: "TA1", PropositionID: "P1"}, {ID: "TA2", PropositionID: "P2"}},
		Risks:           []domain.Risk{{ID: "RK1", PropositionID: "P1"}},
		Communications:  []domain.Communication{{ID: "C1", PropositionID: "P1"}},
		Capitalizations: []domain.Capitalization{{ID: "CP1", PropositionID: "P1"}},
	}
}

func ids[T domain.Record](rows []T) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.RecordID())
	}
	return out
}

func sameIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
