package core

import (
	"propdesk/internal/core/budget"
	"propdesk/pkg/domain"
)

// PropositionSummary is one dashboard row.
type PropositionSummary struct {
	ID     string                   `json:"id"`
	Name   string                   `json:"name"`
	Year   int                      `json:"year"`
	Funder string                   `json:"funder"`
	Status domain.PropositionStatus `json:"status"`
	Budget budget.Totals            `json:"budget"`
}

// Dashboard aggregates the portfolio view.
type Dashboard struct {
	Propositions int                              `json:"propositions"`
	Accepted     int                              `json:"accepted"`
	ByStatus     map[domain.PropositionStatus]int `json:"by_status"`
	Budget       budget.Totals                    `json:"budget"`
	Rows         []PropositionSummary             `json:"rows"`
}

// BuildDashboard summarises every proposition. Propositions without a status
// count as drafting.
func BuildDashboard(s domain.Snapshot) Dashboard {
	linesByProp := make(map[string][]domain.BudgetLine)
	for _, line := range s.BudgetLines {
		linesByProp[line.PropositionID] = append(linesByProp[line.PropositionID], line)
	}
	d := Dashboard{
		Propositions: len(s.Propositions),
		ByStatus:     make(map[domain.PropositionStatus]int),
		Budget:       budget.Sum(s.BudgetLines),
		Rows:         make([]PropositionSummary, 0, len(s.Propositions)),
	}
	for _, prop := range s.Propositions {
		status := prop.Status
		if status == "" {
			status = domain.StatusDrafting
		}
		d.ByStatus[status]++
		if status == domain.StatusAccepted {
			d.Accepted++
		}
		d.Rows = append(d.Rows, PropositionSummary{
			ID:     prop.ID,
			Name:   prop.Name,
			Year:   prop.Year,
			Funder: prop.Funder,
			Status: status,
			Budget: budget.Sum(linesByProp[prop.ID]),
		})
	}
	return d
}

// PropositionDetail is a proposition together with its whole subtree.
type PropositionDetail struct {
	Proposition     domain.Proposition       `json:"proposition"`
	Theories        []domain.TheoryOfChange  `json:"theories"`
	Objectives      []domain.Objective       `json:"objectives"`
	Results         []domain.Result          `json:"results"`
	Activities      []domain.Activity        `json:"activities"`
	ActionPlans     []domain.ActionPlanEntry `json:"action_plans"`
	BudgetLines     []domain.BudgetLine      `json:"budget_lines"`
	TargetAudiences []domain.TargetAudience  `json:"target_audiences"`
	Risks           []domain.Risk            `json:"risks"`
	Communications  []domain.Communication   `json:"communications"`
	Capitalizations []domain.Capitalization  `json:"capitalizations"`
	Budget          budget.Totals            `json:"budget"`
}

// BuildPropositionDetail selects the subtree of one proposition. The
// hierarchy is followed through theories, objectives, results, and
// activities; the leaf collections are matched on proposition id.
func BuildPropositionDetail(s domain.Snapshot, id string) (PropositionDetail, bool) {
	prop, ok := s.FindProposition(id)
	if !ok {
		return PropositionDetail{}, false
	}
	d := PropositionDetail{Proposition: prop}
	theories := make(map[string]struct{})
	for _, r := range s.Theories {
		if r.PropositionID == id {
			d.Theories = append(d.Theories, r)
			theories[r.ID] = struct{}{}
		}
	}
	objectives := make(map[string]struct{})
	for _, r := range s.Objectives {
		if has(theories, r.TheoryID) {
			d.Objectives = append(d.Objectives, r)
			objectives[r.ID] = struct{}{}
		}
	}
	results := make(map[string]struct{})
	for _, r := range s.Results {
		if has(objectives, r.ObjectiveID) {
			d.Results = append(d.Results, r)
			results[r.ID] = struct{}{}
		}
	}
	activities := make(map[string]struct{})
	for _, r := range s.Activities {
		if has(results, r.ResultID) {
			d.Activities = append(d.Activities, r)
			activities[r.ID] = struct{}{}
		}
	}
	for _, r := range s.ActionPlans {
		if has(activities, r.ActivityID) {
			d.ActionPlans = append(d.ActionPlans, r)
		}
	}
	d.BudgetLines = filterByProposition(s.BudgetLines, id, func(r domain.BudgetLine) string { return r.PropositionID })
	d.TargetAudiences = filterByProposition(s.TargetAudiences, id, func(r domain.TargetAudience) string { return r.PropositionID })
	d.Risks = filterByProposition(s.Risks, id, func(r domain.Risk) string { return r.PropositionID })
	d.Communications = filterByProposition(s.Communications, id, func(r domain.Communication) string { return r.PropositionID })
	d.Capitalizations = filterByProposition(s.Capitalizations, id, func(r domain.Capitalization) string { return r.PropositionID })
	d.Budget = budget.Sum(d.BudgetLines)
	return d, true
}

func filterByProposition[T any](rows []T, id string, key func(T) string) []T {
	var out []T
	for _, r := range rows {
		if key(r) == id {
			out = append(out, r)
		}
	}
	return out
}
