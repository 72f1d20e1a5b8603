package core

import (
	"maps"
	"slices"
	"strings"

	"propdesk/internal/core/budget"
	"propdesk/pkg/domain"
)

// Mutation is the outcome of a mutation engine operation: the next snapshot
// and the record changes that produced it. ID is set by Add.
type Mutation struct {
	Snapshot domain.Snapshot
	Changes  []domain.Change
	ID       string
}

// Changed reports whether the operation touched any record.
func (m Mutation) Changed() bool { return len(m.Changes) > 0 }

// Engine applies add, update, and delete to snapshots. Operations never
// modify their input and perform no I/O.
type Engine struct {
	clock  Clock
	suffix func() string
}

// NewEngine constructs an engine stamping identifiers with the given clock.
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = ClockFunc(nil)
	}
	return &Engine{clock: clock, suffix: randomSuffix}
}

// Add appends a new record of type t built from fields and assigns it a
// fresh identifier. Any id in fields is ignored. Only a missing parent key
// fails; whether the parent exists is left to the rules.
func (e *Engine) Add(s domain.Snapshot, t domain.EntityType, fields domain.Fields) (Mutation, error) {
	c, err := lookupCollection(t)
	if err != nil {
		return Mutation{Snapshot: s}, err
	}
	if field := domain.ParentField(t); field != "" && fieldString(fields, field) == "" {
		return Mutation{Snapshot: s}, &domain.MissingParentError{Entity: t, Field: field}
	}
	id := e.newID(s, t)
	payload := maps.Clone(fields)
	if payload == nil {
		payload = domain.Fields{}
	}
	payload["id"] = id
	next := s
	rec, err := c.add(&next, payload)
	if err != nil {
		return Mutation{Snapshot: s}, err
	}
	return Mutation{
		Snapshot: next,
		Changes:  []domain.Change{{Entity: t, Action: domain.ActionCreate, After: rec}},
		ID:       id,
	}, nil
}

// Update replaces the record whose id matches fields["id"] with a record
// built from fields, keeping its position. No match is a no-op.
func (e *Engine) Update(s domain.Snapshot, t domain.EntityType, fields domain.Fields) (Mutation, error) {
	c, err := lookupCollection(t)
	if err != nil {
		return Mutation{Snapshot: s}, err
	}
	id := fieldString(fields, "id")
	if id == "" {
		return Mutation{Snapshot: s}, nil
	}
	next := s
	before, after, err := c.update(&next, id, fields)
	if err != nil {
		return Mutation{Snapshot: s}, err
	}
	if after == nil {
		return Mutation{Snapshot: s}, nil
	}
	return Mutation{
		Snapshot: next,
		Changes:  []domain.Change{{Entity: t, Action: domain.ActionUpdate, Before: before, After: after}},
		ID:       id,
	}, nil
}

// Delete removes the record and its dependent subtree. Deleting an absent id
// removes only records that still point at it, so repeating a delete is a no-op.
func (e *Engine) Delete(s domain.Snapshot, t domain.EntityType, id string) (Mutation, error) {
	if _, err := lookupCollection(t); err != nil {
		return Mutation{Snapshot: s}, err
	}
	plan := planCascade(s, t, id)
	next := s
	var changes []domain.Change
	for _, kind := range domain.EntityTypes {
		ids := plan[kind]
		if len(ids) == 0 {
			continue
		}
		for _, rec := range collections[kind].remove(&next, ids) {
			changes = append(changes, domain.Change{Entity: kind, Action: domain.ActionDelete, Before: rec})
		}
	}
	if len(changes) == 0 {
		return Mutation{Snapshot: s}, nil
	}
	return Mutation{Snapshot: next, Changes: changes, ID: id}, nil
}

// EditBudgetLine applies one calculator edit to the line with the given id.
// An unknown id is a no-op.
func (e *Engine) EditBudgetLine(s domain.Snapshot, id, field string, raw any) (Mutation, error) {
	f, err := budget.ParseField(field)
	if err != nil {
		return Mutation{Snapshot: s}, err
	}
	idx := slices.IndexFunc(s.BudgetLines, func(l domain.BudgetLine) bool { return l.ID == id })
	if idx < 0 {
		return Mutation{Snapshot: s}, nil
	}
	before := s.BudgetLines[idx]
	after, err := budget.Edit(before, f, raw)
	if err != nil {
		return Mutation{Snapshot: s}, err
	}
	next := s
	next.BudgetLines = slices.Clone(s.BudgetLines)
	next.BudgetLines[idx] = after
	return Mutation{
		Snapshot: next,
		Changes:  []domain.Change{{Entity: domain.EntityBudgetLine, Action: domain.ActionUpdate, Before: before, After: after}},
		ID:       id,
	}, nil
}

// ReplacePropositionBudget swaps every budget line of a proposition for the
// supplied set. Lines without an id, or with a "new_" placeholder id, receive
// fresh identifiers; all lines are normalised and reassigned to the proposition.
func (e *Engine) ReplacePropositionBudget(s domain.Snapshot, propositionID string, lines []domain.BudgetLine) (Mutation, error) {
	if strings.TrimSpace(propositionID) == "" {
		return Mutation{Snapshot: s}, &domain.MissingParentError{Entity: domain.EntityBudgetLine, Field: "proposition_id"}
	}
	previous := make(map[string]domain.BudgetLine)
	others := make(map[string]struct{})
	out := make([]domain.BudgetLine, 0, len(s.BudgetLines)+len(lines))
	for _, line := range s.BudgetLines {
		if line.PropositionID == propositionID {
			previous[line.ID] = line
			continue
		}
		others[line.ID] = struct{}{}
		out = append(out, line)
	}

	var changes []domain.Change
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		_, taken := others[line.ID]
		_, dup := seen[line.ID]
		if line.ID == "" || strings.HasPrefix(line.ID, "new_") || taken || dup {
			line.ID = e.newID(s, domain.EntityBudgetLine)
		}
		seen[line.ID] = struct{}{}
		line.PropositionID = propositionID
		line = budget.Normalize(line)
		out = append(out, line)
		if before, ok := previous[line.ID]; ok {
			delete(previous, line.ID)
			if before != line {
				changes = append(changes, domain.Change{Entity: domain.EntityBudgetLine, Action: domain.ActionUpdate, Before: before, After: line})
			}
			continue
		}
		changes = append(changes, domain.Change{Entity: domain.EntityBudgetLine, Action: domain.ActionCreate, After: line})
	}
	for _, line := range s.BudgetLines {
		if _, gone := previous[line.ID]; gone {
			changes = append(changes, domain.Change{Entity: domain.EntityBudgetLine, Action: domain.ActionDelete, Before: line})
		}
	}
	if len(changes) == 0 {
		return Mutation{Snapshot: s}, nil
	}
	next := s
	next.BudgetLines = out
	return Mutation{Snapshot: next, Changes: changes, ID: propositionID}, nil
}
