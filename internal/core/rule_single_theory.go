package core

import (
	"context"
	"fmt"

	"propdesk/pkg/domain"
)

// NewSingleTheoryOfChangeRule flags propositions that end up with more than
// one theory of change after a theory is created or re-parented.
func NewSingleTheoryOfChangeRule(strict bool) domain.Rule {
	return singleTheoryRule{severity: strictSeverity(strict)}
}

type singleTheoryRule struct {
	severity domain.Severity
}

func (singleTheoryRule) Name() string { return "single_theory_of_change" }

func (r singleTheoryRule) Evaluate(_ context.Context, view domain.Snapshot, changes []domain.Change) (domain.Outcome, error) {
	touched := make(map[string]struct{})
	for _, rec := range upserted(changes) {
		if theory, ok := rec.(domain.TheoryOfChange); ok {
			touched[theory.PropositionID] = struct{}{}
		}
	}
	res := domain.Outcome{}
	if len(touched) == 0 {
		return res, nil
	}
	counts := make(map[string]int)
	for _, theory := range view.Theories {
		counts[theory.PropositionID]++
	}
	for _, prop := range view.Propositions {
		if _, ok := touched[prop.ID]; !ok || counts[prop.ID] <= 1 {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "single_theory_of_change",
			Severity: r.severity,
			Message:  fmt.Sprintf("proposition %s has %d theories of change", prop.ID, counts[prop.ID]),
			Entity:   domain.EntityProposition,
			EntityID: prop.ID,
		})
	}
	return res, nil
}
