package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestMissingParentError(t *testing.T) {
	err := error(&MissingParentError{Entity: EntityResult, Field: "objective_id"})
	if !errors.Is(err, ErrMissingParent) {
		t.Fatal("expected ErrMissingParent match")
	}
	if err.Error() != "result requires objective_id" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFieldsError(t *testing.T) {
	cause := errors.New("bad json")
	err := error(&FieldsError{Entity: EntityRisk, Err: cause})
	if !errors.Is(err, ErrInvalidFields) || !errors.Is(err, cause) {
		t.Fatalf("expected both sentinel and cause to match: %v", err)
	}
}

func TestRuleViolationErrorMessage(t *testing.T) {
	err := RuleViolationError{Outcome: Outcome{Violations: []Violation{
		{Rule: "numeric_range", Severity: SeverityWarn, Message: "negative"},
		{Rule: "required_fields", Severity: SeverityBlock, Message: "name required"},
	}}}
	if !strings.Contains(err.Error(), "required_fields") {
		t.Fatalf("expected blocking rule in message, got %q", err.Error())
	}
	if (RuleViolationError{}).Error() != "mutation blocked by rules" {
		t.Fatal("unexpected fallback message")
	}
}

func TestOutcomeMerge(t *testing.T) {
	var o Outcome
	o.Merge(Outcome{})
	if o.Violations != nil || o.HasBlocking() {
		t.Fatal("empty merge must not allocate")
	}
	o.Merge(Outcome{Violations: []Violation{{Severity: SeverityWarn}}})
	if o.HasBlocking() {
		t.Fatal("warn is not blocking")
	}
	o.Merge(Outcome{Violations: []Violation{{Severity: SeverityBlock}}})
	if !o.HasBlocking() || len(o.Violations) != 2 {
		t.Fatalf("unexpected outcome %+v", o)
	}
}
