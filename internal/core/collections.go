package core

import (
	"slices"

	"propdesk/internal/core/budget"
	"propdesk/pkg/domain"
)

// collection binds the generic row operations to one Snapshot field.
type collection struct {
	add    func(s *domain.Snapshot, fields domain.Fields) (domain.Record, error)
	update func(s *domain.Snapshot, id string, fields domain.Fields) (before, after domain.Record, err error)
	remove func(s *domain.Snapshot, ids map[string]struct{}) []domain.Record
}

var collections = buildCollections()

func buildCollections() map[domain.EntityType]collection {
	c := make(map[domain.EntityType]collection, len(domain.EntityTypes))
	c[domain.EntityProposition] = bind(domain.EntityProposition, func(s *domain.Snapshot) *[]domain.Proposition { return &s.Propositions })
	c[domain.EntityTheoryOfChange] = bind(domain.EntityTheoryOfChange, func(s *domain.Snapshot) *[]domain.TheoryOfChange { return &s.Theories })
	c[domain.EntityObjective] = bind(domain.EntityObjective, func(s *domain.Snapshot) *[]domain.Objective { return &s.Objectives })
	c[domain.EntityResult] = bind(domain.EntityResult, func(s *domain.Snapshot) *[]domain.Result { return &s.Results })
	c[domain.EntityActivity] = bind(domain.EntityActivity, func(s *domain.Snapshot) *[]domain.Activity { return &s.Activities })
	c[domain.EntityTargetAudience] = bind(domain.EntityTargetAudience, func(s *domain.Snapshot) *[]domain.TargetAudience { return &s.TargetAudiences })
	c[domain.EntityRisk] = bind(domain.EntityRisk, func(s *domain.Snapshot) *[]domain.Risk { return &s.Risks })
	c[domain.EntityActionPlanEntry] = bind(domain.EntityActionPlanEntry, func(s *domain.Snapshot) *[]domain.ActionPlanEntry { return &s.ActionPlans })
	c[domain.EntityBudgetLine] = bind(domain.EntityBudgetLine, func(s *domain.Snapshot) *[]domain.BudgetLine { return &s.BudgetLines })
	c[domain.EntityCommunication] = bind(domain.EntityCommunication, func(s *domain.Snapshot) *[]domain.Communication { return &s.Communications })
	c[domain.EntityCapitalization] = bind(domain.EntityCapitalization, func(s *domain.Snapshot) *[]domain.Capitalization { return &s.Capitalizations })
	return c
}

func lookupCollection(t domain.EntityType) (collection, error) {
	c, ok := collections[t]
	if !ok {
		return collection{}, &domain.UnknownEntityTypeError{Type: string(t)}
	}
	return c, nil
}

// bind builds copy-on-write operations for one collection. Every operation
// installs a fresh slice on the snapshot it receives, so snapshots sharing the
// previous slice are unaffected.
func bind[T domain.Record](t domain.EntityType, sel func(*domain.Snapshot) *[]T) collection {
	return collection{
		add: func(s *domain.Snapshot, fields domain.Fields) (domain.Record, error) {
			rec, err := decodeFields[T](t, fields)
			if err != nil {
				return nil, err
			}
			rec = normalizeRecord(rec)
			rows := sel(s)
			*rows = append(slices.Clip(*rows), rec)
			return rec, nil
		},
		update: func(s *domain.Snapshot, id string, fields domain.Fields) (domain.Record, domain.Record, error) {
			rows := sel(s)
			idx := slices.IndexFunc(*rows, func(r T) bool { return r.RecordID() == id })
			if idx < 0 {
				return nil, nil, nil
			}
			rec, err := decodeFields[T](t, fields)
			if err != nil {
				return nil, nil, err
			}
			next := slices.Clone(*rows)
			before := next[idx]
			rec = reviseRecord(before, rec)
			next[idx] = rec
			*rows = next
			return before, rec, nil
		},
		remove: func(s *domain.Snapshot, ids map[string]struct{}) []domain.Record {
			rows := sel(s)
			var removed []domain.Record
			kept := make([]T, 0, len(*rows))
			for _, r := range *rows {
				if _, drop := ids[r.RecordID()]; drop {
					removed = append(removed, r)
					continue
				}
				kept = append(kept, r)
			}
			if len(removed) > 0 {
				*rows = kept
			}
			return removed
		},
	}
}

// normalizeRecord applies the budget calculator to budget lines and leaves
// every other record as decoded.
func normalizeRecord[T domain.Record](rec T) T {
	if line, ok := any(rec).(domain.BudgetLine); ok {
		if out, ok := any(budget.Normalize(line)).(T); ok {
			return out
		}
	}
	return rec
}

// reviseRecord applies the budget calculator to a replaced budget line so the
// fields that changed decide how the allocation is recomputed.
func reviseRecord[T domain.Record](before, after T) T {
	prev, ok := any(before).(domain.BudgetLine)
	if !ok {
		return after
	}
	if out, ok := any(budget.Revise(prev, any(after).(domain.BudgetLine))).(T); ok {
		return out
	}
	return after
}
