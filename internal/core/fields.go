package core

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"propdesk/internal/core/budget"
	"propdesk/pkg/domain"
)

var budgetNumericFields = []string{"quantity", "unit_cost", "total_amount", "funder_share", "own_share"}

// numericFields lists the number-typed fields that may arrive as form strings.
var numericFields = map[domain.EntityType][]string{
	domain.EntityProposition:    {"year"},
	domain.EntityResult:         {"baseline_value", "target_value", "achieved_level"},
	domain.EntityTargetAudience: {"estimated_count", "reached_count"},
}

// decodeFields converts a field map into a typed record. Numeric fields
// submitted as text are parsed first; budget amounts go through the budget
// coercion so they are never negative or NaN.
func decodeFields[T domain.Record](t domain.EntityType, fields domain.Fields) (T, error) {
	var out T
	normalized := maps.Clone(fields)
	if normalized == nil {
		normalized = domain.Fields{}
	}
	if t == domain.EntityBudgetLine {
		for _, key := range budgetNumericFields {
			if v, ok := normalized[key]; ok {
				normalized[key] = budget.Coerce(v)
			}
		}
	}
	for _, key := range numericFields[t] {
		if s, ok := normalized[key].(string); ok {
			normalized[key] = parseLenient(s)
		}
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return out, &domain.FieldsError{Entity: t, Err: err}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &domain.FieldsError{Entity: t, Err: err}
	}
	return out, nil
}

func parseLenient(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// EncodeRecord converts a record into a field map keyed by JSON name.
func EncodeRecord(r domain.Record) (domain.Fields, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out domain.Fields
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fieldString(fields domain.Fields, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
