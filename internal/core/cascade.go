package core

import "propdesk/pkg/domain"

// cascadePlan collects the ids to remove per entity type.
type cascadePlan map[domain.EntityType]map[string]struct{}

func (p cascadePlan) mark(t domain.EntityType, id string) bool {
	ids, ok := p[t]
	if !ok {
		ids = make(map[string]struct{})
		p[t] = ids
	}
	if _, seen := ids[id]; seen {
		return false
	}
	ids[id] = struct{}{}
	return true
}

// edge links a parent type to one child collection, grouped by parent id.
type edge struct {
	child    domain.EntityType
	byParent map[string][]string
}

func groupBy[T domain.Record](rows []T, key func(T) string) map[string][]string {
	out := make(map[string][]string)
	for _, r := range rows {
		if k := key(r); k != "" {
			out[k] = append(out[k], r.RecordID())
		}
	}
	return out
}

// cascadeIndex maps each parent type to the child collections that must
// follow it on delete. Budget lines hang from both their proposition and
// their optional activity.
func cascadeIndex(s domain.Snapshot) map[domain.EntityType][]edge {
	return map[domain.EntityType][]edge{
		domain.EntityProposition: {
			{domain.EntityTheoryOfChange, groupBy(s.Theories, func(r domain.TheoryOfChange) string { return r.PropositionID })},
			{domain.EntityTargetAudience, groupBy(s.TargetAudiences, func(r domain.TargetAudience) string { return r.PropositionID })},
			{domain.EntityRisk, groupBy(s.Risks, func(r domain.Risk) string { return r.PropositionID })},
			{domain.EntityBudgetLine, groupBy(s.BudgetLines, func(r domain.BudgetLine) string { return r.PropositionID })},
			{domain.EntityCommunication, groupBy(s.Communications, func(r domain.Communication) string { return r.PropositionID })},
			{domain.EntityCapitalization, groupBy(s.Capitalizations, func(r domain.Capitalization) string { return r.PropositionID })},
		},
		domain.EntityTheoryOfChange: {
			{domain.EntityObjective, groupBy(s.Objectives, func(r domain.Objective) string { return r.TheoryID })},
		},
		domain.EntityObjective: {
			{domain.EntityResult, groupBy(s.Results, func(r domain.Result) string { return r.ObjectiveID })},
		},
		domain.EntityResult: {
			{domain.EntityActivity, groupBy(s.Activities, func(r domain.Activity) string { return r.ResultID })},
		},
		domain.EntityActivity: {
			{domain.EntityActionPlanEntry, groupBy(s.ActionPlans, func(r domain.ActionPlanEntry) string { return r.ActivityID })},
			{domain.EntityBudgetLine, groupBy(s.BudgetLines, func(r domain.BudgetLine) string { return r.ActivityID })},
		},
	}
}

// planCascade walks the parent to children index from (t, id) and returns
// every record that must go. The index is built once per call.
func planCascade(s domain.Snapshot, t domain.EntityType, id string) cascadePlan {
	plan := cascadePlan{}
	if id == "" {
		return plan
	}
	index := cascadeIndex(s)
	type node struct {
		t  domain.EntityType
		id string
	}
	stack := []node{{t, id}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !plan.mark(n.t, n.id) {
			continue
		}
		for _, e := range index[n.t] {
			for _, child := range e.byParent[n.id] {
				stack = append(stack, node{e.child, child})
			}
		}
	}
	return plan
}
