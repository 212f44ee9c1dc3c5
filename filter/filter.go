/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package filter parses query keywords of the form "field" or
// "field__operator" into typed triples and evaluates them against decoded
// instances. All triples of one query combine with logical AND; the surface
// has no OR and no negation.
package filter

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/fields"
	"github.com/suparena/kvmodels/schema"
)

// Op is a filter operator tag.
type Op string

// The fixed operator vocabulary.
const (
	OpExact       Op = "exact"
	OpIExact      Op = "iexact"
	OpContains    Op = "contains"
	OpIContains   Op = "icontains"
	OpIn          Op = "in"
	OpGT          Op = "gt"
	OpGTE         Op = "gte"
	OpLT          Op = "lt"
	OpLTE         Op = "lte"
	OpStartsWith  Op = "startswith"
	OpIStartsWith Op = "istartswith"
	OpEndsWith    Op = "endswith"
	OpIEndsWith   Op = "iendswith"
	OpRange       Op = "range"
	OpIsNull      Op = "isnull"
)

var operators = map[Op]bool{
	OpExact: true, OpIExact: true,
	OpContains: true, OpIContains: true,
	OpIn: true,
	OpGT: true, OpGTE: true, OpLT: true, OpLTE: true,
	OpStartsWith: true, OpIStartsWith: true,
	OpEndsWith: true, OpIEndsWith: true,
	OpRange: true, OpIsNull: true,
}

// Triple is one parsed filter: a schema field, an operator and a normalized
// operand.
type Triple struct {
	Field   fields.Field
	Op      Op
	Operand any

	// Keyword is the raw filter keyword the triple was parsed from,
	// kept for error reporting.
	Keyword string
}

// splitKeyword separates "field__op" on the first double-underscore run.
// A bare field name implies the exact operator.
func splitKeyword(keyword string) (field string, op Op) {
	if i := strings.Index(keyword, "__"); i >= 0 {
		return keyword[:i], Op(keyword[i+2:])
	}
	return keyword, OpExact
}

// Parse turns a filter keyword map into triples against the given schema.
// Unknown fields, unknown operators and incompatible operands are
// configuration errors, raised before any store access happens.
func Parse(s *schema.Schema, filters map[string]any) ([]Triple, error) {
	triples := make([]Triple, 0, len(filters))
	for keyword, operand := range filters {
		name, op := splitKeyword(keyword)
		if !operators[op] {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("unknown filter operator %q", op))
		}
		f, ok := s.Field(name)
		if !ok {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("model %q has no field %q", s.Name(), name))
		}
		normalized, err := normalizeOperand(f, op, operand, keyword)
		if err != nil {
			return nil, err
		}
		triples = append(triples, Triple{Field: f, Op: op, Operand: normalized, Keyword: keyword})
	}
	return triples, nil
}

func normalizeOperand(f fields.Field, op Op, operand any, keyword string) (any, error) {
	switch op {
	case OpExact:
		v, err := f.Normalize(operand)
		if err != nil {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("operand is not a valid %s value: %v", f.Kind, err))
		}
		return v, nil

	case OpIExact, OpContains, OpIContains, OpStartsWith, OpIStartsWith, OpEndsWith, OpIEndsWith:
		if !f.Text() {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("operator %q applies to text fields only, field is %s", op, f.Kind))
		}
		s, ok := operand.(string)
		if !ok {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("operand must be a string, got %T", operand))
		}
		return s, nil

	case OpIn:
		elems, err := operandSlice(operand)
		if err != nil {
			return nil, errors.NewConfigurationError(keyword, err.Error())
		}
		out := make([]any, len(elems))
		for i, el := range elems {
			v, err := f.Normalize(el)
			if err != nil {
				return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("element %d is not a valid %s value: %v", i, f.Kind, err))
			}
			out[i] = v
		}
		return out, nil

	case OpGT, OpGTE, OpLT, OpLTE:
		if !f.Ordered() {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("operator %q requires an ordered field, field is %s", op, f.Kind))
		}
		v, err := f.Normalize(operand)
		if err != nil {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("operand is not a valid %s value: %v", f.Kind, err))
		}
		return v, nil

	case OpRange:
		if !f.Ordered() {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("operator %q requires an ordered field, field is %s", op, f.Kind))
		}
		elems, err := operandSlice(operand)
		if err != nil {
			return nil, errors.NewConfigurationError(keyword, err.Error())
		}
		if len(elems) != 2 {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("range operand needs exactly 2 elements, got %d", len(elems)))
		}
		low, err := f.Normalize(elems[0])
		if err != nil {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("range low bound: %v", err))
		}
		high, err := f.Normalize(elems[1])
		if err != nil {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("range high bound: %v", err))
		}
		return []any{low, high}, nil

	case OpIsNull:
		b, ok := operand.(bool)
		if !ok {
			return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("isnull operand must be a bool, got %T", operand))
		}
		return b, nil
	}
	return nil, errors.NewConfigurationError(keyword, fmt.Sprintf("unknown filter operator %q", op))
}

// operandSlice widens the accepted sequence forms to []any.
func operandSlice(operand any) ([]any, error) {
	rv := reflect.ValueOf(operand)
	if operand == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("operand must be a sequence, got %T", operand)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// Eval reports whether a decoded field value satisfies one triple. A nil
// value (the absence sentinel) only ever matches isnull=true.
func (t Triple) Eval(value any) (bool, error) {
	if t.Op == OpIsNull {
		return (value == nil) == t.Operand.(bool), nil
	}
	if value == nil {
		return false, nil
	}
	switch t.Op {
	case OpExact:
		return equalValues(value, t.Operand), nil
	case OpIExact:
		return strings.EqualFold(value.(string), t.Operand.(string)), nil
	case OpContains:
		return strings.Contains(value.(string), t.Operand.(string)), nil
	case OpIContains:
		return strings.Contains(strings.ToLower(value.(string)), strings.ToLower(t.Operand.(string))), nil
	case OpStartsWith:
		return strings.HasPrefix(value.(string), t.Operand.(string)), nil
	case OpIStartsWith:
		return strings.HasPrefix(strings.ToLower(value.(string)), strings.ToLower(t.Operand.(string))), nil
	case OpEndsWith:
		return strings.HasSuffix(value.(string), t.Operand.(string)), nil
	case OpIEndsWith:
		return strings.HasSuffix(strings.ToLower(value.(string)), strings.ToLower(t.Operand.(string))), nil
	case OpIn:
		for _, el := range t.Operand.([]any) {
			if equalValues(value, el) {
				return true, nil
			}
		}
		return false, nil
	case OpGT, OpGTE, OpLT, OpLTE:
		c, err := compareOrdered(value, t.Operand)
		if err != nil {
			return false, errors.NewConfigurationError(t.Keyword, err.Error())
		}
		switch t.Op {
		case OpGT:
			return c > 0, nil
		case OpGTE:
			return c >= 0, nil
		case OpLT:
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case OpRange:
		bounds := t.Operand.([]any)
		lo, err := compareOrdered(value, bounds[0])
		if err != nil {
			return false, errors.NewConfigurationError(t.Keyword, err.Error())
		}
		hi, err := compareOrdered(value, bounds[1])
		if err != nil {
			return false, errors.NewConfigurationError(t.Keyword, err.Error())
		}
		return lo >= 0 && hi <= 0, nil
	}
	return false, errors.NewConfigurationError(t.Keyword, fmt.Sprintf("unknown filter operator %q", t.Op))
}

// MatchAll evaluates every triple against a values map; the instance matches
// only if all triples pass.
func MatchAll(triples []Triple, values map[string]any) (bool, error) {
	for _, t := range triples {
		ok, err := t.Eval(values[t.Field.Name])
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// equalValues compares two normalized values of the same field kind.
// Numbers compare across the integer/floating split; decimals and times use
// their own equality; collections compare structurally.
func equalValues(a, b any) bool {
	if _, ok := asFloat(a); ok {
		c, ok := compareNumbers(a, b)
		return ok && c == 0
	}
	switch av := a.(type) {
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []any, map[string]any, []string:
		return reflect.DeepEqual(a, b)
	default:
		return a == b
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compareNumbers orders two number-kind values. Two int64s compare exactly,
// preserving the codec's full integer fidelity beyond 2^53; only mixed
// integer/float pairs widen to float64.
func compareNumbers(a, b any) (int, bool) {
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			switch {
			case ai < bi:
				return -1, true
			case ai > bi:
				return 1, true
			}
			return 0, true
		}
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

// Compare orders two decoded values of the same kind. Beyond the ordered
// kinds it also orders strings lexically and booleans false-before-true, so
// result sorting can cover every scalar kind.
func Compare(a, b any) (int, error) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %T", b)
		}
		return strings.Compare(av, bv), nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare bool with %T", b)
		}
		switch {
		case av == bv:
			return 0, nil
		case bv:
			return -1, nil
		}
		return 1, nil
	}
	return compareOrdered(a, b)
}

// compareOrdered returns -1, 0 or 1 for value vs operand over the ordered
// kinds: number, decimal, date, datetime.
func compareOrdered(value, operand any) (int, error) {
	if _, ok := asFloat(value); ok {
		c, ok := compareNumbers(value, operand)
		if !ok {
			return 0, fmt.Errorf("cannot compare number with %T", operand)
		}
		return c, nil
	}
	switch v := value.(type) {
	case decimal.Decimal:
		o, ok := operand.(decimal.Decimal)
		if !ok {
			return 0, fmt.Errorf("cannot compare decimal with %T", operand)
		}
		return v.Cmp(o), nil
	case time.Time:
		o, ok := operand.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare time with %T", operand)
		}
		switch {
		case v.Before(o):
			return -1, nil
		case v.After(o):
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("type %T has no ordering", value)
}
