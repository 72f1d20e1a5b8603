package core

import (
	"context"
	"fmt"

	"propdesk/internal/core/budget"
	"propdesk/pkg/domain"
)

// NewBudgetBalanceRule blocks budget lines whose shares do not add up to
// their total. Normalisation in the engine keeps this from firing.
func NewBudgetBalanceRule() domain.Rule {
	return budgetBalanceRule{}
}

type budgetBalanceRule struct{}

func (budgetBalanceRule) Name() string { return "budget_balance" }

func (budgetBalanceRule) Evaluate(_ context.Context, _ domain.Snapshot, changes []domain.Change) (domain.Outcome, error) {
	res := domain.Outcome{}
	for _, rec := range upserted(changes) {
		line, ok := rec.(domain.BudgetLine)
		if !ok || budget.Balanced(line) {
			continue
		}
		msg := fmt.Sprintf("budget line %s is unbalanced: total %g, funder %g, own %g",
			line.ID, line.TotalAmount, line.FunderShare, line.OwnShare)
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "budget_balance",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityBudgetLine,
			EntityID: line.ID,
		})
	}
	return res, nil
}
