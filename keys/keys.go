/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package keys maps (prefix, model, instance id, field) tuples to storage
// keys and back. The mapping is deterministic and injective: the separator
// may not appear inside any component, so distinct tuples always produce
// distinct keys and the wildcard pattern of one model never matches another
// model's keys.
package keys

import (
	"fmt"
	"strings"
)

// Separator joins key components; components may not contain it.
const Separator = ":"

// DefaultPrefix namespaces keys when the caller supplies no usable prefix.
const DefaultPrefix = "kvmodels"

// Builder constructs storage keys under a fixed prefix.
type Builder struct {
	prefix string
}

// NewBuilder returns a Builder for the given prefix. Separators inside the
// prefix are stripped and an empty prefix falls back to DefaultPrefix, so a
// Builder is always usable.
func NewBuilder(prefix string) Builder {
	return Builder{prefix: SanitizePrefix(prefix)}
}

// SanitizePrefix strips reserved characters from a caller-supplied prefix and
// substitutes DefaultPrefix when nothing usable remains.
func SanitizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, Separator, "")
	prefix = strings.ReplaceAll(prefix, "*", "")
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}

// Prefix returns the sanitized prefix in use.
func (b Builder) Prefix() string { return b.prefix }

// Key returns the storage key for one field of one instance:
// prefix:model:id:field.
func (b Builder) Key(model, id, field string) string {
	return b.prefix + Separator + model + Separator + id + Separator + field
}

// InstancePattern matches every field key of a single instance.
func (b Builder) InstancePattern(model, id string) string {
	return b.prefix + Separator + model + Separator + id + Separator + "*"
}

// ModelPattern matches every key written for any instance of a model and,
// because model names cannot contain the separator, no key of any other
// model.
func (b Builder) ModelPattern(model string) string {
	return b.prefix + Separator + model + Separator + "*"
}

// Parse splits a storage key produced by Key back into its components.
func (b Builder) Parse(key string) (model, id, field string, err error) {
	rest, ok := strings.CutPrefix(key, b.prefix+Separator)
	if !ok {
		return "", "", "", fmt.Errorf("key %q does not carry prefix %q", key, b.prefix)
	}
	parts := strings.Split(rest, Separator)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("key %q is not a model:id:field key", key)
	}
	return parts[0], parts[1], parts[2], nil
}
