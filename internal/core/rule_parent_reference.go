package core

import (
	"context"
	"fmt"

	"propdesk/pkg/domain"
)

// NewParentReferenceRule reports created or updated records whose parent does
// not exist. Budget lines are also checked against their optional activity.
func NewParentReferenceRule(strict bool) domain.Rule {
	return parentReferenceRule{severity: strictSeverity(strict)}
}

type parentReferenceRule struct {
	severity domain.Severity
}

func (parentReferenceRule) Name() string { return "parent_reference" }

func (r parentReferenceRule) Evaluate(_ context.Context, view domain.Snapshot, changes []domain.Change) (domain.Outcome, error) {
	res := domain.Outcome{}
	for _, rec := range upserted(changes) {
		parentType, parentID := domain.ParentOf(rec)
		if parentType != "" && !view.Contains(parentType, parentID) {
			res.Violations = append(res.Violations, r.violation(rec, parentType, parentID))
		}
		if line, ok := rec.(domain.BudgetLine); ok && line.ActivityID != "" && !view.Contains(domain.EntityActivity, line.ActivityID) {
			res.Violations = append(res.Violations, r.violation(rec, domain.EntityActivity, line.ActivityID))
		}
	}
	return res, nil
}

func (r parentReferenceRule) violation(rec domain.Record, parentType domain.EntityType, parentID string) domain.Violation {
	return domain.Violation{
		Rule:     "parent_reference",
		Severity: r.severity,
		Message:  fmt.Sprintf("%s %s references missing %s %q", rec.EntityType(), rec.RecordID(), parentType, parentID),
		Entity:   rec.EntityType(),
		EntityID: rec.RecordID(),
	}
}
