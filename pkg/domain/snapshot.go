package domain

// Fields is the plain field-value mapping submitted for add and update. Keys
// follow the JSON names of the target record.
type Fields map[string]any

// Snapshot captures the eleven record collections. Collections keep insertion
// order. A Snapshot is immutable by convention: mutations build a new value
// and leave the previous one valid for any other holder.
type Snapshot struct {
	Propositions    []Proposition     `json:"propositions" yaml:"propositions"`
	Theories        []TheoryOfChange  `json:"theories" yaml:"theories"`
	Objectives      []Objective       `json:"objectives" yaml:"objectives"`
	Results         []Result          `json:"results" yaml:"results"`
	Activities      []Activity        `json:"activities" yaml:"activities"`
	TargetAudiences []TargetAudience  `json:"target_audiences" yaml:"target_audiences"`
	Risks           []Risk            `json:"risks" yaml:"risks"`
	ActionPlans     []ActionPlanEntry `json:"action_plans" yaml:"action_plans"`
	BudgetLines     []BudgetLine      `json:"budget_lines" yaml:"budget_lines"`
	Communications  []Communication   `json:"communications" yaml:"communications"`
	Capitalizations []Capitalization  `json:"capitalizations" yaml:"capitalizations"`
}

// Clone returns a copy whose collections share no backing arrays with s.
// Records hold only scalar fields, so copying the slices is a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Propositions:    cloneRows(s.Propositions),
		Theories:        cloneRows(s.Theories),
		Objectives:      cloneRows(s.Objectives),
		Results:         cloneRows(s.Results),
		Activities:      cloneRows(s.Activities),
		TargetAudiences: cloneRows(s.TargetAudiences),
		Risks:           cloneRows(s.Risks),
		ActionPlans:     cloneRows(s.ActionPlans),
		BudgetLines:     cloneRows(s.BudgetLines),
		Communications:  cloneRows(s.Communications),
		Capitalizations: cloneRows(s.Capitalizations),
	}
}

func cloneRows[T any](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

// Records returns the collection for t as generic records, in insertion order.
func (s Snapshot) Records(t EntityType) []Record {
	switch t {
	case EntityProposition:
		return asRecords(s.Propositions)
	case EntityTheoryOfChange:
		return asRecords(s.Theories)
	case EntityObjective:
		return asRecords(s.Objectives)
	case EntityResult:
		return asRecords(s.Results)
	case EntityActivity:
		return asRecords(s.Activities)
	case EntityTargetAudience:
		return asRecords(s.TargetAudiences)
	case EntityRisk:
		return asRecords(s.Risks)
	case EntityActionPlanEntry:
		return asRecords(s.ActionPlans)
	case EntityBudgetLine:
		return asRecords(s.BudgetLines)
	case EntityCommunication:
		return asRecords(s.Communications)
	case EntityCapitalization:
		return asRecords(s.Capitalizations)
	default:
		return nil
	}
}

func asRecords[T Record](rows []T) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

// Count returns the number of records of type t.
func (s Snapshot) Count(t EntityType) int {
	return len(s.Records(t))
}

// Counts returns the size of every collection keyed by entity type.
func (s Snapshot) Counts() map[EntityType]int {
	out := make(map[EntityType]int, len(EntityTypes))
	for _, t := range EntityTypes {
		out[t] = s.Count(t)
	}
	return out
}

// Total returns the number of records across all collections.
func (s Snapshot) Total() int {
	n := 0
	for _, t := range EntityTypes {
		n += s.Count(t)
	}
	return n
}

// Find looks up a record by type and id.
func (s Snapshot) Find(t EntityType, id string) (Record, bool) {
	for _, r := range s.Records(t) {
		if r.RecordID() == id {
			return r, true
		}
	}
	return nil, false
}

// Contains reports whether a record of type t with the given id exists.
func (s Snapshot) Contains(t EntityType, id string) bool {
	_, ok := s.Find(t, id)
	return ok
}

// FindProposition returns the proposition with the given id.
func (s Snapshot) FindProposition(id string) (Proposition, bool) {
	return findRow(s.Propositions, id)
}

// FindBudgetLine returns the budget line with the given id.
func (s Snapshot) FindBudgetLine(id string) (BudgetLine, bool) {
	return findRow(s.BudgetLines, id)
}

func findRow[T Record](rows []T, id string) (T, bool) {
	for _, r := range rows {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// ParentOf returns the entity type and id a record hangs from. Budget lines
// report their proposition; the optional activity link is not the owning parent.
// Propositions have no parent.
func ParentOf(r Record) (EntityType, string) {
	switch v := r.(type) {
	case TheoryOfChange:
		return EntityProposition, v.PropositionID
	case Objective:
		return EntityTheoryOfChange, v.TheoryID
	case Result:
		return EntityObjective, v.ObjectiveID
	case Activity:
		return EntityResult, v.ResultID
	case ActionPlanEntry:
		return EntityActivity, v.ActivityID
	case BudgetLine:
		return EntityProposition, v.PropositionID
	case TargetAudience:
		return EntityProposition, v.PropositionID
	case Risk:
		return EntityProposition, v.PropositionID
	case Communication:
		return EntityProposition, v.PropositionID
	case Capitalization:
		return EntityProposition, v.PropositionID
	default:
		return "", ""
	}
}

// ParentField returns the JSON name of the foreign key t requires, or "" for
// the root type.
func ParentField(t EntityType) string {
	switch t {
	case EntityProposition:
		return ""
	case EntityObjective:
		return "theory_id"
	case EntityResult:
		return "objective_id"
	case EntityActivity:
		return "result_id"
	case EntityActionPlanEntry:
		return "activity_id"
	default:
		return "proposition_id"
	}
}
