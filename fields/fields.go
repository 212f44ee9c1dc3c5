/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package fields defines the typed field descriptors of a record schema and
// the codec between language-native values and the store's flat string form.
package fields

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/suparena/kvmodels/errors"
)

// Kind is the semantic type tag of a field.
type Kind string

// Field kind constants.
const (
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindBool     Kind = "bool"
	KindDecimal  Kind = "decimal"
	KindJSON     Kind = "json"
	KindList     Kind = "list"
	KindMap      Kind = "map"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
	KindRef      Kind = "ref"
	KindManyMany Kind = "manytomany"
)

// Identifiable is implemented by record instances so relation fields can
// accept either an id string or the instance itself.
type Identifiable interface {
	InstanceID() string
}

// Field is an immutable descriptor of one named, typed field in a schema.
type Field struct {
	Name        string
	Kind        Kind
	Null        bool
	Default     any
	DefaultFunc func() any
	Choices     []any
	Model       string // referenced model name for Ref and ManyToMany kinds
}

// Option configures a Field at construction.
type Option func(*Field)

// WithDefault sets a static default applied when no value is supplied.
func WithDefault(v any) Option {
	return func(f *Field) { f.Default = v }
}

// WithDefaultFunc sets a default-producing function evaluated per create.
func WithDefaultFunc(fn func() any) Option {
	return func(f *Field) { f.DefaultFunc = fn }
}

// NotNull marks the field as non-nullable.
func NotNull() Option {
	return func(f *Field) { f.Null = false }
}

// WithChoices restricts the field to a finite set of allowed values.
func WithChoices(choices ...any) Option {
	return func(f *Field) { f.Choices = choices }
}

func newField(name string, kind Kind, opts ...Option) Field {
	f := Field{Name: name, Kind: kind, Null: true}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// String declares a text field.
func String(name string, opts ...Option) Field { return newField(name, KindString, opts...) }

// Number declares a numeric field holding either an integer or a float;
// the codec preserves which form was stored.
func Number(name string, opts ...Option) Field { return newField(name, KindNumber, opts...) }

// Bool declares a boolean field.
func Bool(name string, opts ...Option) Field { return newField(name, KindBool, opts...) }

// Decimal declares an exact base-10 decimal field.
func Decimal(name string, opts ...Option) Field { return newField(name, KindDecimal, opts...) }

// JSON declares a field holding any JSON-serializable value.
func JSON(name string, opts ...Option) Field { return newField(name, KindJSON, opts...) }

// List declares an ordered-list field.
func List(name string, opts ...Option) Field { return newField(name, KindList, opts...) }

// Map declares a string-keyed mapping field.
func Map(name string, opts ...Option) Field { return newField(name, KindMap, opts...) }

// Date declares a date-only field.
func Date(name string, opts ...Option) Field { return newField(name, KindDate, opts...) }

// DateTime declares a date-plus-time field, stored to millisecond precision.
func DateTime(name string, opts ...Option) Field { return newField(name, KindDateTime, opts...) }

// Ref declares a single foreign reference to another model. The stored value
// is the referenced instance's id; decoding returns the id unresolved.
func Ref(name, model string, opts ...Option) Field {
	f := newField(name, KindRef, opts...)
	f.Model = model
	return f
}

// ManyToMany declares a reference to a set of instances of another model,
// stored as a JSON array of ids.
func ManyToMany(name, model string, opts ...Option) Field {
	f := newField(name, KindManyMany, opts...)
	f.Model = model
	return f
}

// Text reports whether substring and case-folding filter operators apply.
func (f Field) Text() bool {
	return f.Kind == KindString
}

// Ordered reports whether the kind has a native ordering usable by the
// gt/gte/lt/lte and range filter operators.
func (f Field) Ordered() bool {
	switch f.Kind {
	case KindNumber, KindDecimal, KindDate, KindDateTime:
		return true
	}
	return false
}

// DefaultValue evaluates the field's default. Returns nil when the field has
// neither a static default nor a default function.
func (f Field) DefaultValue() any {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	return f.Default
}

// Normalize coerces a caller-supplied value to the field's canonical
// language-native representation. A nil value passes through as the absence
// sentinel; null and choice checks happen in Validate.
func (f Field) Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, errors.NewValidationError(f.Name, fmt.Sprintf("expected string, got %T", v))
		}
		if strings.ContainsRune(s, '\x00') {
			return nil, errors.NewValidationError(f.Name, "string value may not contain NUL bytes")
		}
		return s, nil
	case KindNumber:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float32:
			return finiteFloat(f.Name, float64(n))
		case float64:
			return finiteFloat(f.Name, n)
		}
		return nil, errors.NewValidationError(f.Name, fmt.Sprintf("expected integer or float, got %T", v))
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, errors.NewValidationError(f.Name, fmt.Sprintf("expected bool, got %T", v))
		}
		return b, nil
	case KindDecimal:
		switch d := v.(type) {
		case decimal.Decimal:
			return d, nil
		case string:
			dec, err := decimal.NewFromString(d)
			if err != nil {
				return nil, errors.NewValidationError(f.Name, fmt.Sprintf("not a decimal: %q", d))
			}
			return dec, nil
		case int:
			return decimal.NewFromInt(int64(d)), nil
		case int64:
			return decimal.NewFromInt(d), nil
		case float64:
			return decimal.NewFromFloat(d), nil
		}
		return nil, errors.NewValidationError(f.Name, fmt.Sprintf("expected decimal, got %T", v))
	case KindJSON:
		// Any JSON value is accepted; scalar numbers take their JSON form.
		switch j := v.(type) {
		case map[string]any, []any, string, bool:
			return v, nil
		case float64:
			return finiteFloat(f.Name, j)
		case int:
			return float64(j), nil
		case int32:
			return float64(j), nil
		case int64:
			return float64(j), nil
		case float32:
			return finiteFloat(f.Name, float64(j))
		}
		return nil, errors.NewValidationError(f.Name, fmt.Sprintf("expected a JSON value, got %T", v))
	case KindList:
		switch l := v.(type) {
		case []any:
			return l, nil
		case []string:
			out := make([]any, len(l))
			for i, s := range l {
				out[i] = s
			}
			return out, nil
		}
		return nil, errors.NewValidationError(f.Name, fmt.Sprintf("expected list, got %T", v))
	case KindMap:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.NewValidationError(f.Name, fmt.Sprintf("expected map, got %T", v))
		}
		return m, nil
	case KindDate:
		t, err := coerceTime(f.Name, v, "2006-01-02")
		if err != nil {
			return nil, err
		}
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	case KindDateTime:
		t, err := coerceTime(f.Name, v, time.RFC3339Nano)
		if err != nil {
			return nil, err
		}
		return t.UTC().Truncate(time.Millisecond), nil
	case KindRef:
		switch r := v.(type) {
		case string:
			return r, nil
		case Identifiable:
			return r.InstanceID(), nil
		}
		return nil, errors.NewValidationError(f.Name, fmt.Sprintf("expected id or instance, got %T", v))
	case KindManyMany:
		return normalizeIDSet(f.Name, v)
	}
	return nil, errors.NewValidationError(f.Name, fmt.Sprintf("unknown field kind %q", f.Kind))
}

// finiteFloat rejects NaN and infinities, which have no decodable string
// form, the same write-time guard the string kind applies to NUL bytes.
func finiteFloat(field string, n float64) (any, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, errors.NewValidationError(field, "number must be finite")
	}
	return n, nil
}

// coerceTime accepts either a time.Time or a string in the given layout.
func coerceTime(field string, v any, layout string) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(layout, t)
		if err != nil {
			return time.Time{}, errors.NewValidationError(field, fmt.Sprintf("not a valid timestamp: %q", t))
		}
		return parsed, nil
	}
	return time.Time{}, errors.NewValidationError(field, fmt.Sprintf("expected time.Time or string, got %T", v))
}

func normalizeIDSet(field string, v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return l, nil
	case []any:
		ids := make([]string, len(l))
		for i, el := range l {
			switch e := el.(type) {
			case string:
				ids[i] = e
			case Identifiable:
				ids[i] = e.InstanceID()
			default:
				return nil, errors.NewValidationError(field, fmt.Sprintf("expected id or instance, got %T", el))
			}
		}
		return ids, nil
	case Identifiable:
		return []string{l.InstanceID()}, nil
	}
	return nil, errors.NewValidationError(field, fmt.Sprintf("expected list of ids or instances, got %T", v))
}

// Validate enforces the null flag and the choice set on a normalized value.
func (f Field) Validate(v any) error {
	if v == nil {
		if !f.Null {
			return errors.NewValidationError(f.Name, "null is not allowed")
		}
		return nil
	}
	if len(f.Choices) == 0 {
		return nil
	}
	encoded, err := f.Encode(v)
	if err != nil {
		return err
	}
	for _, choice := range f.Choices {
		nc, err := f.Normalize(choice)
		if err != nil {
			return errors.NewConfigurationError(f.Name, fmt.Sprintf("choice %v is not a valid %s value", choice, f.Kind))
		}
		ec, err := f.Encode(nc)
		if err != nil {
			return err
		}
		if ec == encoded {
			return nil
		}
	}
	return errors.NewValidationError(f.Name, fmt.Sprintf("%v is not an allowed choice", v))
}
