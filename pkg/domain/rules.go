package domain

import "context"

// Rule defines an evaluation executed against a candidate snapshot before it
// replaces the current one.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view Snapshot, changes []Change) (Outcome, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rule names in registration order.
func (e *RulesEngine) Rules() []string {
	out := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.Name())
	}
	return out
}

// Evaluate executes all registered rules and aggregates their outcomes.
func (e *RulesEngine) Evaluate(ctx context.Context, view Snapshot, changes []Change) (Outcome, error) {
	var combined Outcome
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Outcome{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
