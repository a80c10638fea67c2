package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Operator is the comparison applied between a stored value and a condition's value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Operators lists every supported operator in display order.
var Operators = []Operator{OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan}

// Valid returns true for any of the supported operators.
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// or returns o, or def when o is unset.
func (o Operator) or(def Operator) Operator {
	if o == "" {
		return def
	}
	return o
}

// ParseOperator parses an operator string as found in presets.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", errors.Wrapf(ErrInvalidOperator, "%q", s)
	}
	return op, nil
}

// compare applies op between a stored value and the comparison value.
//
// equals and not_equals compare numerically when both sides parse as numbers and as
// case-sensitive strings otherwise, so "007" equals "7".  contains is always a
// substring test over the stored value's string form.  greater_than and less_than
// need both sides to be numeric and are false otherwise.
func compare(stored any, op Operator, value string) bool {
	switch op {
	case OpEquals, OpNotEquals:
		eq := false
		a, aok := toNumber(stored)
		b, bok := toNumber(value)
		if aok && bok {
			eq = a == b
		} else {
			eq = toString(stored) == value
		}
		if op == OpEquals {
			return eq
		}
		return !eq
	case OpContains:
		return strings.Contains(toString(stored), value)
	case OpGreaterThan, OpLessThan:
		a, aok := toNumber(stored)
		b, bok := toNumber(value)
		if !aok || !bok {
			return false
		}
		if op == OpGreaterThan {
			return a > b
		}
		return a < b
	default:
		return false
	}
}

func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
