// Package domain defines the proposal records, value types, and rule
// evaluation primitives used by propdesk.
package domain

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityProposition identifies the root proposal record.
	EntityProposition EntityType = "proposition"
	// EntityTheoryOfChange identifies a theory-of-change record.
	EntityTheoryOfChange EntityType = "theory_of_change"
	// EntityObjective identifies an objective under a theory of change.
	EntityObjective EntityType = "objective"
	// EntityResult identifies an expected result under an objective.
	EntityResult EntityType = "result"
	// EntityActivity identifies an activity contributing to a result.
	EntityActivity EntityType = "activity"
	// EntityTargetAudience identifies a target audience of a proposition.
	EntityTargetAudience EntityType = "target_audience"
	// EntityRisk identifies a risk record.
	EntityRisk EntityType = "risk"
	// EntityActionPlanEntry identifies an action plan entry under an activity.
	EntityActionPlanEntry EntityType = "action_plan_entry"
	// EntityBudgetLine identifies a costed budget line.
	EntityBudgetLine EntityType = "budget_line"
	// EntityCommunication identifies a communication plan record.
	EntityCommunication EntityType = "communication"
	// EntityCapitalization identifies a capitalization record.
	EntityCapitalization EntityType = "capitalization"
)

// EntityTypes lists every entity type in top-down tree order.
var EntityTypes = []EntityType{
	EntityProposition,
	EntityTheoryOfChange,
	EntityObjective,
	EntityResult,
	EntityActivity,
	EntityActionPlanEntry,
	EntityBudgetLine,
	EntityTargetAudience,
	EntityRisk,
	EntityCommunication,
	EntityCapitalization,
}

// ParseEntityType resolves a wire tag into an EntityType.
func ParseEntityType(raw string) (EntityType, error) {
	for _, t := range EntityTypes {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", &UnknownEntityTypeError{Type: raw}
}

// PropositionStatus tracks where a proposal stands with its funder.
type PropositionStatus string

// Proposition submission statuses.
const (
	StatusDrafting  PropositionStatus = "drafting"
	StatusSubmitted PropositionStatus = "submitted"
	StatusAccepted  PropositionStatus = "accepted"
	StatusRejected  PropositionStatus = "rejected"
	StatusPostponed PropositionStatus = "postponed"
	StatusCancelled PropositionStatus = "cancelled"
)

// ObjectiveKind distinguishes general from specific objectives.
type ObjectiveKind string

// Objective kinds.
const (
	ObjectiveGeneral  ObjectiveKind = "general"
	ObjectiveSpecific ObjectiveKind = "specific"
)

// ResultKind classifies a result in the logical framework.
type ResultKind string

// Result kinds.
const (
	ResultOutput       ResultKind = "output"
	ResultEffect       ResultKind = "effect"
	ResultIntermediate ResultKind = "intermediate_result"
)

// Sex describes the composition of a target audience.
type Sex string

// Audience compositions.
const (
	SexMen   Sex = "men"
	SexWomen Sex = "women"
	SexMixed Sex = "mixed"
)

// Level is a three-step qualitative scale used for risk probability and impact.
type Level string

// Risk levels.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// RiskStatus tracks mitigation progress.
type RiskStatus string

// Risk statuses.
const (
	RiskActive    RiskStatus = "active"
	RiskMitigated RiskStatus = "mitigated"
	RiskClosed    RiskStatus = "closed"
)

// Phase is the project phase an action plan entry belongs to.
type Phase string

// Action plan phases.
const (
	PhasePreparation    Phase = "preparation"
	PhaseImplementation Phase = "implementation"
	PhaseEvaluation     Phase = "evaluation"
)

// PlanStatus tracks execution of an action plan entry.
type PlanStatus string

// Action plan statuses.
const (
	PlanTodo       PlanStatus = "todo"
	PlanInProgress PlanStatus = "in_progress"
	PlanDone       PlanStatus = "done"
)

// BudgetCategories enumerates the designations offered for budget lines.
var BudgetCategories = []string{
	"Fees",
	"Transport",
	"Per diem",
	"Food",
	"Reception",
	"Small equipment",
	"Printing",
	"Other",
}

// Record is implemented by every entity stored in a Snapshot.
type Record interface {
	RecordID() string
	EntityType() EntityType
}

// Proposition is a single project-funding proposal, the root aggregate.
type Proposition struct {
	ID                   string            `json:"id" yaml:"id"`
	Name                 string            `json:"name" yaml:"name"`
	Year                 int               `json:"year" yaml:"year"`
	Funder               string            `json:"funder" yaml:"funder"`
	InterventionZone     string            `json:"intervention_zone" yaml:"intervention_zone"`
	StartDate            string            `json:"start_date" yaml:"start_date"`
	EndDate              string            `json:"end_date" yaml:"end_date"`
	ContextDescription   string            `json:"context_description" yaml:"context_description"`
	IdentifiedChallenges string            `json:"identified_challenges" yaml:"identified_challenges"`
	Justification        string            `json:"justification" yaml:"justification"`
	ValuesAndPrinciples  string            `json:"values_and_principles" yaml:"values_and_principles"`
	CrossCuttingApproach string            `json:"cross_cutting_approach" yaml:"cross_cutting_approach"`
	SubmissionDeadline   string            `json:"submission_deadline,omitempty" yaml:"submission_deadline,omitempty"`
	SubmissionEmail      string            `json:"submission_email,omitempty" yaml:"submission_email,omitempty"`
	Status               PropositionStatus `json:"status,omitempty" yaml:"status,omitempty"`
	StatusDate           string            `json:"status_date,omitempty" yaml:"status_date,omitempty"`
}

// TheoryOfChange holds the long-term impact narrative of a proposition.
type TheoryOfChange struct {
	ID                        string `json:"id" yaml:"id"`
	PropositionID             string `json:"proposition_id" yaml:"proposition_id"`
	LongTermStatement         string `json:"long_term_statement" yaml:"long_term_statement"`
	KeyAssumptions            string `json:"key_assumptions" yaml:"key_assumptions"`
	ChangeDrivers             string `json:"change_drivers" yaml:"change_drivers"`
	SocialIssues              string `json:"social_issues" yaml:"social_issues"`
	ImpactIndicators          string `json:"impact_indicators" yaml:"impact_indicators"`
	ImpactVerificationSources string `json:"impact_verification_sources" yaml:"impact_verification_sources"`
}

// Objective is a goal under a theory of change.
type Objective struct {
	ID                  string        `json:"id" yaml:"id"`
	TheoryID            string        `json:"theory_id" yaml:"theory_id"`
	Kind                ObjectiveKind `json:"kind" yaml:"kind"`
	Statement           string        `json:"statement" yaml:"statement"`
	Indicators          string        `json:"indicators" yaml:"indicators"`
	VerificationSources string        `json:"verification_sources" yaml:"verification_sources"`
	MonitoringMeans     string        `json:"monitoring_means" yaml:"monitoring_means"`
	MonitoringOwner     string        `json:"monitoring_owner" yaml:"monitoring_owner"`
}

// Result is an expected outcome of an objective.
type Result struct {
	ID                 string     `json:"id" yaml:"id"`
	ObjectiveID        string     `json:"objective_id" yaml:"objective_id"`
	Statement          string     `json:"statement" yaml:"statement"`
	Kind               ResultKind `json:"kind" yaml:"kind"`
	Indicators         string     `json:"indicators" yaml:"indicators"`
	BaselineValue      float64    `json:"baseline_value" yaml:"baseline_value"`
	TargetValue        float64    `json:"target_value" yaml:"target_value"`
	VerificationSource string     `json:"verification_source" yaml:"verification_source"`
	Owner              string     `json:"owner" yaml:"owner"`
	AchievedLevel      float64    `json:"achieved_level" yaml:"achieved_level"`
}

// Activity is an action contributing to a result.
type Activity struct {
	ID              string `json:"id" yaml:"id"`
	ResultID        string `json:"result_id" yaml:"result_id"`
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
	Owner           string `json:"owner" yaml:"owner"`
	ExecutionPeriod string `json:"execution_period" yaml:"execution_period"`
}

// TargetAudience describes a population the proposition serves.
type TargetAudience struct {
	ID                 string  `json:"id" yaml:"id"`
	PropositionID      string  `json:"proposition_id" yaml:"proposition_id"`
	Category           string  `json:"category" yaml:"category"`
	Sex                Sex     `json:"sex" yaml:"sex"`
	AgeRange           string  `json:"age_range" yaml:"age_range"`
	Location           string  `json:"location" yaml:"location"`
	VulnerabilityLevel string  `json:"vulnerability_level" yaml:"vulnerability_level"`
	EstimatedCount     float64 `json:"estimated_count" yaml:"estimated_count"`
	ReachedCount       float64 `json:"reached_count" yaml:"reached_count"`
	ImpactComment      string  `json:"impact_comment" yaml:"impact_comment"`
}

// Risk is a threat to the proposition and its mitigation.
type Risk struct {
	ID              string     `json:"id" yaml:"id"`
	PropositionID   string     `json:"proposition_id" yaml:"proposition_id"`
	Description     string     `json:"description" yaml:"description"`
	Probability     Level      `json:"probability" yaml:"probability"`
	Impact          Level      `json:"impact" yaml:"impact"`
	Mitigation      string     `json:"mitigation" yaml:"mitigation"`
	MonitoringOwner string     `json:"monitoring_owner" yaml:"monitoring_owner"`
	Status          RiskStatus `json:"status" yaml:"status"`
}

// ActionPlanEntry schedules work for an activity.
type ActionPlanEntry struct {
	ID              string     `json:"id" yaml:"id"`
	ActivityID      string     `json:"activity_id" yaml:"activity_id"`
	Phase           Phase      `json:"phase" yaml:"phase"`
	Month           string     `json:"month" yaml:"month"`
	Owner           string     `json:"owner" yaml:"owner"`
	Status          PlanStatus `json:"status" yaml:"status"`
	FollowUpComment string     `json:"follow_up_comment" yaml:"follow_up_comment"`
}

// BudgetLine is one costed item split between funder and own contributions.
// ActivityID is empty for proposition-level lines.
type BudgetLine struct {
	ID             string  `json:"id" yaml:"id"`
	ActivityID     string  `json:"activity_id" yaml:"activity_id"`
	PropositionID  string  `json:"proposition_id" yaml:"proposition_id"`
	AccountingCode string  `json:"accounting_code" yaml:"accounting_code"`
	Designation    string  `json:"designation" yaml:"designation"`
	Label          string  `json:"label" yaml:"label"`
	Unit           string  `json:"unit" yaml:"unit"`
	Quantity       float64 `json:"quantity" yaml:"quantity"`
	UnitCost       float64 `json:"unit_cost" yaml:"unit_cost"`
	TotalAmount    float64 `json:"total_amount" yaml:"total_amount"`
	FunderShare    float64 `json:"funder_share" yaml:"funder_share"`
	OwnShare       float64 `json:"own_share" yaml:"own_share"`
}

// Communication is one item of the communication plan.
type Communication struct {
	ID            string `json:"id" yaml:"id"`
	PropositionID string `json:"proposition_id" yaml:"proposition_id"`
	Medium        string `json:"medium" yaml:"medium"`
	Audience      string `json:"audience" yaml:"audience"`
	KeyMessage    string `json:"key_message" yaml:"key_message"`
	ReleaseDate   string `json:"release_date" yaml:"release_date"`
	Channel       string `json:"channel" yaml:"channel"`
	Owner         string `json:"owner" yaml:"owner"`
}

// Capitalization records a knowledge product drawn from the project.
type Capitalization struct {
	ID            string `json:"id" yaml:"id"`
	PropositionID string `json:"proposition_id" yaml:"proposition_id"`
	Theme         string `json:"theme" yaml:"theme"`
	DocumentType  string `json:"document_type" yaml:"document_type"`
	DocumentLink  string `json:"document_link" yaml:"document_link"`
	CreatedOn     string `json:"created_on" yaml:"created_on"`
}

func (r Proposition) RecordID() string     { return r.ID }
func (r TheoryOfChange) RecordID() string  { return r.ID }
func (r Objective) RecordID() string       { return r.ID }
func (r Result) RecordID() string          { return r.ID }
func (r Activity) RecordID() string        { return r.ID }
func (r TargetAudience) RecordID() string  { return r.ID }
func (r Risk) RecordID() string            { return r.ID }
func (r ActionPlanEntry) RecordID() string { return r.ID }
func (r BudgetLine) RecordID() string      { return r.ID }
func (r Communication) RecordID() string   { return r.ID }
func (r Capitalization) RecordID() string  { return r.ID }

func (Proposition) EntityType() EntityType     { return EntityProposition }
func (TheoryOfChange) EntityType() EntityType  { return EntityTheoryOfChange }
func (Objective) EntityType() EntityType       { return EntityObjective }
func (Result) EntityType() EntityType          { return EntityResult }
func (Activity) EntityType() EntityType        { return EntityActivity }
func (TargetAudience) EntityType() EntityType  { return EntityTargetAudience }
func (Risk) EntityType() EntityType            { return EntityRisk }
func (ActionPlanEntry) EntityType() EntityType { return EntityActionPlanEntry }
func (BudgetLine) EntityType() EntityType      { return EntityBudgetLine }
func (Communication) EntityType() EntityType   { return EntityCommunication }
func (Capitalization) EntityType() EntityType  { return EntityCapitalization }

// Change describes a single record mutation applied by the mutation engine.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks the snapshot replacement.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity"`
	EntityID string     `json:"entity_id"`
}

// Outcome aggregates violations from the rules engine.
type Outcome struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Merge appends violations from another outcome.
func (o *Outcome) Merge(other Outcome) {
	if len(other.Violations) == 0 {
		return
	}
	o.Violations = append(o.Violations, other.Violations...)
}

// HasBlocking returns true if the outcome contains blocking violations.
func (o Outcome) HasBlocking() bool {
	for _, v := range o.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}
