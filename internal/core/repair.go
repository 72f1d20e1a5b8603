package core

import (
	"propdesk/internal/core/budget"
	"propdesk/pkg/domain"
)

// RepairReport summarises what Repair changed in an imported snapshot.
type RepairReport struct {
	Dropped    map[domain.EntityType]int `json:"dropped,omitempty"`
	Normalized int                       `json:"normalized"`
}

// Changed reports whether Repair altered the snapshot.
func (r RepairReport) Changed() bool {
	return r.Normalized > 0 || len(r.Dropped) > 0
}

// Repair brings an externally supplied snapshot back to the at-rest
// invariants. Records without an id, duplicate ids, and records whose parent
// is gone are dropped top-down, so a dropped parent takes its subtree with
// it. Budget lines are normalised.
func Repair(s domain.Snapshot) (domain.Snapshot, RepairReport) {
	report := RepairReport{Dropped: map[domain.EntityType]int{}}
	var out domain.Snapshot

	var props, theories, objectives, results, activities map[string]struct{}
	out.Propositions, props = keepRows(s.Propositions, &report, func(domain.Proposition) bool { return true })
	out.Theories, theories = keepRows(s.Theories, &report, func(r domain.TheoryOfChange) bool { return has(props, r.PropositionID) })
	out.Objectives, objectives = keepRows(s.Objectives, &report, func(r domain.Objective) bool { return has(theories, r.TheoryID) })
	out.Results, results = keepRows(s.Results, &report, func(r domain.Result) bool { return has(objectives, r.ObjectiveID) })
	out.Activities, activities = keepRows(s.Activities, &report, func(r domain.Activity) bool { return has(results, r.ResultID) })
	out.ActionPlans, _ = keepRows(s.ActionPlans, &report, func(r domain.ActionPlanEntry) bool { return has(activities, r.ActivityID) })
	out.BudgetLines, _ = keepRows(s.BudgetLines, &report, func(r domain.BudgetLine) bool {
		return has(props, r.PropositionID) && (r.ActivityID == "" || has(activities, r.ActivityID))
	})
	out.TargetAudiences, _ = keepRows(s.TargetAudiences, &report, func(r domain.TargetAudience) bool { return has(props, r.PropositionID) })
	out.Risks, _ = keepRows(s.Risks, &report, func(r domain.Risk) bool { return has(props, r.PropositionID) })
	out.Communications, _ = keepRows(s.Communications, &report, func(r domain.Communication) bool { return has(props, r.PropositionID) })
	out.Capitalizations, _ = keepRows(s.Capitalizations, &report, func(r domain.Capitalization) bool { return has(props, r.PropositionID) })

	for i, line := range out.BudgetLines {
		normalized := budget.Normalize(line)
		if normalized != line {
			report.Normalized++
			out.BudgetLines[i] = normalized
		}
	}
	if len(report.Dropped) == 0 {
		report.Dropped = nil
	}
	return out, report
}

func has(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}

func keepRows[T domain.Record](rows []T, report *RepairReport, keep func(T) bool) ([]T, map[string]struct{}) {
	ids := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		id := r.RecordID()
		_, dup := ids[id]
		if id == "" || dup || !keep(r) {
			report.Dropped[r.EntityType()]++
			continue
		}
		ids[id] = struct{}{}
		out = append(out, r)
	}
	return out, ids
}
