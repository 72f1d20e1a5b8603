package core

import (
	"context"
	"fmt"

	"propdesk/pkg/domain"
)

// NewNumericRangeRule warns about negative indicator values and audience counts.
func NewNumericRangeRule() domain.Rule {
	return numericRangeRule{}
}

type numericRangeRule struct{}

func (numericRangeRule) Name() string { return "numeric_range" }

func (numericRangeRule) Evaluate(_ context.Context, _ domain.Snapshot, changes []domain.Change) (domain.Outcome, error) {
	res := domain.Outcome{}
	check := func(rec domain.Record, field string, value float64) {
		if value >= 0 {
			return
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "numeric_range",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("%s must not be negative (got %g)", field, value),
			Entity:   rec.EntityType(),
			EntityID: rec.RecordID(),
		})
	}
	for _, rec := range upserted(changes) {
		switch v := rec.(type) {
		case domain.Result:
			check(v, "baseline_value", v.BaselineValue)
			check(v, "target_value", v.TargetValue)
			check(v, "achieved_level", v.AchievedLevel)
		case domain.TargetAudience:
			check(v, "estimated_count", v.EstimatedCount)
			check(v, "reached_count", v.ReachedCount)
		case domain.Proposition:
			check(v, "year", float64(v.Year))
		}
	}
	return res, nil
}
