/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

// Instance is one record conforming to a model: an identity assigned at
// creation plus a mapping from field name to decoded value. Every load
// produces a fresh Instance; none are shared or cached.
type Instance struct {
	model  string
	id     string
	values map[string]any
}

func newInstance(model, id string, values map[string]any) *Instance {
	if values == nil {
		values = make(map[string]any)
	}
	return &Instance{model: model, id: id, values: values}
}

// ID returns the instance id, assigned at creation and immutable.
func (i *Instance) ID() string { return i.id }

// InstanceID makes Instance usable wherever a relation accepts an id.
func (i *Instance) InstanceID() string { return i.id }

// Model returns the model name the instance belongs to.
func (i *Instance) Model() string { return i.model }

// Get returns the decoded value of a field, or nil when the field is absent.
func (i *Instance) Get(field string) any {
	return i.values[field]
}

// Set assigns a field value on the in-memory instance. Validation and
// encoding happen at Save time, not here.
func (i *Instance) Set(field string, v any) {
	i.values[field] = v
}

// Values returns a copy of the instance's field values.
func (i *Instance) Values() map[string]any {
	out := make(map[string]any, len(i.values))
	for k, v := range i.values {
		out[k] = v
	}
	return out
}
