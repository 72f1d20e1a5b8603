package core

import (
	"context"
	"strings"

	"propdesk/pkg/domain"
)

// NewRequiredFieldsRule blocks propositions saved without a name.
func NewRequiredFieldsRule() domain.Rule {
	return requiredFieldsRule{}
}

type requiredFieldsRule struct{}

func (requiredFieldsRule) Name() string { return "required_fields" }

func (requiredFieldsRule) Evaluate(_ context.Context, _ domain.Snapshot, changes []domain.Change) (domain.Outcome, error) {
	res := domain.Outcome{}
	for _, rec := range upserted(changes) {
		prop, ok := rec.(domain.Proposition)
		if !ok || strings.TrimSpace(prop.Name) != "" {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "required_fields",
			Severity: domain.SeverityBlock,
			Message:  "proposition name is required",
			Entity:   domain.EntityProposition,
			EntityID: prop.ID,
		})
	}
	return res, nil
}
