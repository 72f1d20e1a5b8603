// Package budget keeps the derived monetary fields of budget lines consistent
// with their quantity, unit cost, and allocation inputs.
package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"propdesk/pkg/domain"

	"github.com/shopspring/decimal"
)

// Field names a calculated input of a budget line.
type Field string

// Calculated inputs. Editing any of them triggers recomputation.
const (
	Quantity    Field = "quantity"
	UnitCost    Field = "unit_cost"
	FunderShare Field = "funder_share"
	OwnShare    Field = "own_share"
)

// ErrUnknownField is returned when an edit targets a field the calculator does not own.
var ErrUnknownField = errors.New("budget: not a calculated field")

// ParseField resolves a JSON field name into a Field.
func ParseField(raw string) (Field, error) {
	switch f := Field(raw); f {
	case Quantity, UnitCost, FunderShare, OwnShare:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
}

// Coerce converts an arbitrary input into a finite non-negative number.
// Anything that does not parse as a number is treated as 0.
func Coerce(raw any) float64 {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		v = f
	default:
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Edit applies a single field edit and recomputes the dependent fields.
// Changing quantity or unit cost invalidates the allocation: the whole
// amount moves to the funder share and must be split again explicitly.
func Edit(line domain.BudgetLine, field Field, raw any) (domain.BudgetLine, error) {
	value := Coerce(raw)
	switch field {
	case Quantity, UnitCost:
		if field == Quantity {
			line.Quantity = value
		} else {
			line.UnitCost = value
		}
		line.TotalAmount = Coerce(line.Quantity) * Coerce(line.UnitCost)
		line.FunderShare = line.TotalAmount
		line.OwnShare = 0
	case FunderShare:
		line.FunderShare, line.OwnShare = split(Coerce(line.TotalAmount), value)
	case OwnShare:
		line.OwnShare, line.FunderShare = split(Coerce(line.TotalAmount), value)
	default:
		return line, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return line, nil
}

// Normalize recomputes the total from quantity and unit cost, keeps the
// funder share within range, and derives the own share from it.
func Normalize(line domain.BudgetLine) domain.BudgetLine {
	line.Quantity = Coerce(line.Quantity)
	line.UnitCost = Coerce(line.UnitCost)
	line.TotalAmount = line.Quantity * line.UnitCost
	line.FunderShare, line.OwnShare = split(line.TotalAmount, Coerce(line.FunderShare))
	return line
}

// Revise normalizes after as a wholesale replacement of before. A changed
// quantity or unit cost resets the allocation the way Edit does. Otherwise
// an own share edit wins when the funder share is untouched, and the funder
// share drives the split in every other case.
func Revise(before, after domain.BudgetLine) domain.BudgetLine {
	line := after
	line.Quantity = Coerce(after.Quantity)
	line.UnitCost = Coerce(after.UnitCost)
	line.TotalAmount = line.Quantity * line.UnitCost
	funder, own := Coerce(after.FunderShare), Coerce(after.OwnShare)
	switch {
	case line.Quantity != Coerce(before.Quantity) || line.UnitCost != Coerce(before.UnitCost):
		line.FunderShare, line.OwnShare = line.TotalAmount, 0
	case own != Coerce(before.OwnShare) && funder == Coerce(before.FunderShare):
		line.OwnShare, line.FunderShare = split(line.TotalAmount, own)
	default:
		line.FunderShare, line.OwnShare = split(line.TotalAmount, funder)
	}
	return line
}

// split clamps share to total and derives its complement in decimal so the
// pair adds back up to total.
func split(total, share float64) (float64, float64) {
	share = math.Min(share, total)
	rest := decimal.NewFromFloat(total).Sub(decimal.NewFromFloat(share))
	return share, rest.InexactFloat64()
}

// Remaining is the unallocated part of a line, in cents. It is always 0 for
// lines produced by Edit, Normalize or Revise.
func Remaining(line domain.BudgetLine) float64 {
	total := decimal.NewFromFloat(Coerce(line.TotalAmount))
	allocated := decimal.NewFromFloat(Coerce(line.FunderShare)).Add(decimal.NewFromFloat(Coerce(line.OwnShare)))
	return total.Sub(allocated).Round(2).InexactFloat64()
}

// Balanced reports whether a line satisfies the at-rest invariant.
func Balanced(line domain.BudgetLine) bool {
	total := line.TotalAmount
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		return false
	}
	if !within(line.FunderShare, total) || !within(line.OwnShare, total) {
		return false
	}
	return Remaining(line) == 0
}

func within(v, total float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= total
}

// Totals aggregates a set of budget lines.
type Totals struct {
	Lines       int     `json:"lines"`
	Total       float64 `json:"total_amount"`
	FunderShare float64 `json:"funder_share"`
	OwnShare    float64 `json:"own_share"`
	Remaining   float64 `json:"remaining"`
}

// Sum adds up the lines using the same coercion as Edit so malformed stored
// values never propagate NaN into the totals.
func Sum(lines []domain.BudgetLine) Totals {
	total, funder, own := decimal.Zero, decimal.Zero, decimal.Zero
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(Coerce(line.TotalAmount)))
		funder = funder.Add(decimal.NewFromFloat(Coerce(line.FunderShare)))
		own = own.Add(decimal.NewFromFloat(Coerce(line.OwnShare)))
	}
	return Totals{
		Lines:       len(lines),
		Total:       total.InexactFloat64(),
		FunderShare: funder.InexactFloat64(),
		OwnShare:    own.InexactFloat64(),
		Remaining:   total.Sub(funder.Add(own)).Round(2).InexactFloat64(),
	}
}
