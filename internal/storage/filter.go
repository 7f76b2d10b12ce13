package storage

import (
	"reflect"

	"github.com/dshills/rstindex/pkg/types"
)

// Match is one optional per-field constraint. The zero value is unset and
// contributes nothing to a composed filter; this is distinct from Is(nil),
// which constrains the field to a null value.
type Match struct {
	kind   matchKind
	value  any
	values []any
}

type matchKind int

const (
	matchUnset matchKind = iota
	matchEq
	matchIn
)

// Is constrains a field to equal v. v may be nil: null is a filterable
// value, not the absence of a constraint.
func Is(v any) Match {
	return Match{kind: matchEq, value: v}
}

// AnyOf constrains a field to one of vs. AnyOf with no values matches zero
// records; an empty membership set is never treated as unset.
func AnyOf(vs ...any) Match {
	return Match{kind: matchIn, values: vs}
}

// AnyOfStrings is AnyOf for a string slice.
func AnyOfStrings(vs []string) Match {
	values := make([]any, len(vs))
	for i, v := range vs {
		values[i] = v
	}
	return AnyOf(values...)
}

// IsSet reports whether the match constrains anything.
func (m Match) IsSet() bool {
	return m.kind != matchUnset
}

// Cond names the field a Match applies to.
type Cond struct {
	Field string
	Match Match
}

// Compose builds a single predicate that ANDs every set condition, in
// order. It returns nil when no condition is set: no filter means no
// restriction, and callers fall back to returning all records.
func Compose(conds []Cond) Predicate {
	var preds []Predicate
	for _, c := range conds {
		switch c.Match.kind {
		case matchUnset:
			continue
		case matchEq:
			preds = append(preds, fieldEq(c.Field, c.Match.value))
		case matchIn:
			preds = append(preds, fieldIn(c.Field, c.Match.values))
		}
	}
	if len(preds) == 0 {
		return nil
	}
	return func(rec types.Record) bool {
		for _, p := range preds {
			if !p(rec) {
				return false
			}
		}
		return true
	}
}

func fieldEq(field string, want any) Predicate {
	return func(rec types.Record) bool {
		got, ok := rec[field]
		return ok && valueEq(got, want)
	}
}

func fieldIn(field string, want []any) Predicate {
	return func(rec types.Record) bool {
		got, ok := rec[field]
		if !ok {
			return false
		}
		for _, w := range want {
			if valueEq(got, w) {
				return true
			}
		}
		return false
	}
}

// valueEq compares a stored value against a query value. Stored records
// round-trip through JSON, so numbers decode as float64 regardless of the
// Go type the caller wrote or queries with; numeric values therefore
// compare by magnitude. Everything else compares by deep equality.
func valueEq(got, want any) bool {
	if gf, ok := toFloat(got); ok {
		wf, ok := toFloat(want)
		return ok && gf == wf
	}
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	return reflect.DeepEqual(got, want)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
