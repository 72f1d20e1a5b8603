package core

import "propdesk/pkg/domain"

// RulesEngine aliases the domain engine for callers that only import core.
type RulesEngine = domain.RulesEngine

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
// In strict mode the theory-of-change and parent-reference rules block
// instead of warning.
func NewDefaultRulesEngine(strict bool) *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewRequiredFieldsRule())
	engine.Register(NewParentReferenceRule(strict))
	engine.Register(NewSingleTheoryOfChangeRule(strict))
	engine.Register(NewNumericRangeRule())
	engine.Register(NewBudgetBalanceRule())
	return engine
}

func strictSeverity(strict bool) domain.Severity {
	if strict {
		return domain.SeverityBlock
	}
	return domain.SeverityWarn
}

// upserted returns the records created or updated by changes.
func upserted(changes []domain.Change) []domain.Record {
	out := make([]domain.Record, 0, len(changes))
	for _, change := range changes {
		if change.Action == domain.ActionDelete || change.After == nil {
			continue
		}
		if rec, ok := change.After.(domain.Record); ok {
			out = append(out, rec)
		}
	}
	return out
}
