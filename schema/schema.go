/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package schema defines record schemas: the ordered, named, typed field set
// of a model. A schema is built once and treated as immutable afterwards.
package schema

import (
	"fmt"
	"strings"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/fields"
)

// reserved characters: the key separator and the enumeration wildcard.
const reservedChars = ":*"

// Schema is the ordered mapping from field name to field definition for one
// model. The model name doubles as the namespace component in storage keys.
type Schema struct {
	name   string
	fields []fields.Field
	byName map[string]int
}

// New builds a schema for the given model name. Field order is preserved.
// Duplicate field names, empty names, reserved characters in names, and
// relation fields without a target model are configuration errors.
func New(name string, fs ...fields.Field) (*Schema, error) {
	if name == "" {
		return nil, errors.NewConfigurationError("model", "model name must not be empty")
	}
	if strings.ContainsAny(name, reservedChars) {
		return nil, errors.NewConfigurationError(name, "model name may not contain ':' or '*'")
	}
	s := &Schema{
		name:   name,
		fields: make([]fields.Field, 0, len(fs)),
		byName: make(map[string]int, len(fs)),
	}
	for _, f := range fs {
		if f.Name == "" {
			return nil, errors.NewConfigurationError(name, "field name must not be empty")
		}
		if strings.ContainsAny(f.Name, reservedChars) {
			return nil, errors.NewConfigurationError(f.Name, "field name may not contain ':' or '*'")
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, errors.NewConfigurationError(f.Name, fmt.Sprintf("duplicate field in model %q", name))
		}
		if (f.Kind == fields.KindRef || f.Kind == fields.KindManyMany) && f.Model == "" {
			return nil, errors.NewConfigurationError(f.Name, "relation field requires a target model")
		}
		s.byName[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustNew is New that panics on error, for package-level model declarations.
func MustNew(name string, fs ...fields.Field) *Schema {
	s, err := New(name, fs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the model name.
func (s *Schema) Name() string { return s.name }

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []fields.Field {
	out := make([]fields.Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field definition by name.
func (s *Schema) Field(name string) (fields.Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return fields.Field{}, false
	}
	return s.fields[i], true
}
