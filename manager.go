/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/fields"
	"github.com/suparena/kvmodels/filter"
	"github.com/suparena/kvmodels/keys"
	"github.com/suparena/kvmodels/schema"
	"github.com/suparena/kvmodels/store"
)

// Config is the construction-time configuration of a Manager.
type Config struct {
	// Prefix namespaces every key written by the manager. Reserved
	// characters are stripped; an empty prefix falls back to a default.
	Prefix string

	// IgnoreDecodeErrors downgrades malformed stored values to "field
	// absent" instead of surfacing a DecodeError. A per-deployment policy,
	// not a per-call one.
	IgnoreDecodeErrors bool

	// UseScan selects incremental cursor scans over one bulk key listing
	// when enumerating candidates.
	UseScan bool

	// NonBlocking makes mutating operations return without waiting for
	// store acknowledgment. Write failures after that point are logged but
	// not observable to the caller.
	NonBlocking bool

	// ScanCount is the batch size for incremental scans; zero means the
	// store package default.
	ScanCount int64
}

// Manager orchestrates one model's persistence: key construction,
// enumeration, encoding and decoding, filtering, and write-through to the
// backing store. It holds no cache and adds no locking; concurrent writes to
// the same id race with last-write-wins per field.
type Manager struct {
	kv       store.KV
	schema   *schema.Schema
	cfg      Config
	keys     keys.Builder
	log      *zap.SugaredLogger
	registry *Registry
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Manager) { m.log = log }
}

// WithRegistry registers the manager for relation resolution across models.
func WithRegistry(r *Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// New constructs a Manager for one model over the given store.
func New(kv store.KV, s *schema.Schema, cfg Config, opts ...Option) (*Manager, error) {
	if kv == nil {
		return nil, errors.NewConfigurationError("store", "store must not be nil")
	}
	if s == nil {
		return nil, errors.NewConfigurationError("schema", "schema must not be nil")
	}
	m := &Manager{
		kv:     kv,
		schema: s,
		cfg:    cfg,
		keys:   keys.NewBuilder(cfg.Prefix),
		log:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry != nil {
		if err := m.registry.Register(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Schema returns the model schema the manager serves.
func (m *Manager) Schema() *schema.Schema { return m.schema }

// Keys returns the key builder in use, exposing the manager's key layout to
// embedding tools.
func (m *Manager) Keys() keys.Builder { return m.keys }

// Create validates the supplied values, applies defaults for omitted fields,
// assigns a fresh id and writes every field through to the store. Nothing is
// written until the whole instance validates and encodes.
func (m *Manager) Create(ctx context.Context, values map[string]any) (*Instance, error) {
	for name := range values {
		if _, ok := m.schema.Field(name); !ok {
			return nil, errors.NewValidationError(name, fmt.Sprintf("model %q has no such field", m.schema.Name()))
		}
	}

	decoded := make(map[string]any, m.schema.Len())
	encoded := make(map[string]string, m.schema.Len())
	for _, f := range m.schema.Fields() {
		v, supplied := values[f.Name]
		if !supplied || v == nil {
			v = f.DefaultValue()
		}
		norm, err := f.Normalize(v)
		if err != nil {
			return nil, err
		}
		if err := f.Validate(norm); err != nil {
			return nil, err
		}
		enc, err := f.Encode(norm)
		if err != nil {
			return nil, err
		}
		decoded[f.Name] = norm
		encoded[f.Name] = enc
	}

	id := uuid.NewString()
	if err := m.writeFields(ctx, id, encoded); err != nil {
		return nil, err
	}
	m.log.Debugw("created instance", "model", m.schema.Name(), "id", id)
	return newInstance(m.schema.Name(), id, decoded), nil
}

// Get loads every field of one instance. It fails with a NotFoundError when
// no key at all exists under the id's namespace.
func (m *Manager) Get(ctx context.Context, id string) (*Instance, error) {
	values, found, err := m.loadValues(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFoundError(m.schema.Name(), id)
	}
	return newInstance(m.schema.Name(), id, values), nil
}

// Query parses the filters into triples, then lazily enumerates candidate
// keys, loads and decodes each candidate once, and yields the instances for
// which every triple passes. Result order follows enumeration order.
func (m *Manager) Query(ctx context.Context, filters map[string]any) (*Cursor, error) {
	triples, err := filter.Parse(m.schema, filters)
	if err != nil {
		return nil, err
	}
	it, err := store.Enumerate(ctx, m.kv, m.keys.ModelPattern(m.schema.Name()), m.cfg.UseScan, m.cfg.ScanCount)
	if err != nil {
		return nil, err
	}
	return &Cursor{mgr: m, it: it, triples: triples, seen: make(map[string]bool)}, nil
}

// All returns a cursor over every instance of the model.
func (m *Manager) All(ctx context.Context) (*Cursor, error) {
	return m.Query(ctx, nil)
}

// Update re-validates and rewrites only the supplied fields, leaving the
// rest untouched. It fails with a NotFoundError when the id does not exist.
func (m *Manager) Update(ctx context.Context, id string, values map[string]any) (*Instance, error) {
	existing, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	encoded := make(map[string]string, len(values))
	for name, v := range values {
		f, ok := m.schema.Field(name)
		if !ok {
			return nil, errors.NewValidationError(name, fmt.Sprintf("model %q has no such field", m.schema.Name()))
		}
		norm, err := f.Normalize(v)
		if err != nil {
			return nil, err
		}
		if err := f.Validate(norm); err != nil {
			return nil, err
		}
		enc, err := f.Encode(norm)
		if err != nil {
			return nil, err
		}
		encoded[name] = enc
		existing.Set(name, norm)
	}

	if err := m.writeFields(ctx, id, encoded); err != nil {
		return nil, err
	}
	m.log.Debugw("updated instance", "model", m.schema.Name(), "id", id, "fields", len(values))
	return existing, nil
}

// Save re-validates and rewrites every field of the instance, the
// whole-instance counterpart to Update's partial write.
func (m *Manager) Save(ctx context.Context, inst *Instance) error {
	if inst == nil || inst.ID() == "" {
		return errors.NewValidationError("", "instance has no id; use Create for new records")
	}
	if inst.Model() != m.schema.Name() {
		return errors.NewValidationError("", fmt.Sprintf("instance belongs to model %q, manager serves %q", inst.Model(), m.schema.Name()))
	}

	encoded := make(map[string]string, m.schema.Len())
	for _, f := range m.schema.Fields() {
		norm, err := f.Normalize(inst.Get(f.Name))
		if err != nil {
			return err
		}
		if err := f.Validate(norm); err != nil {
			return err
		}
		enc, err := f.Encode(norm)
		if err != nil {
			return err
		}
		encoded[f.Name] = enc
		inst.Set(f.Name, norm)
	}
	return m.writeFields(ctx, inst.ID(), encoded)
}

// Delete removes every key under the instance's namespace. Deleting an id
// that does not exist is not an error.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.deletePattern(ctx, m.keys.InstancePattern(m.schema.Name(), id))
}

// DeleteAll removes every instance of the model.
func (m *Manager) DeleteAll(ctx context.Context) error {
	return m.deletePattern(ctx, m.keys.ModelPattern(m.schema.Name()))
}

func (m *Manager) deletePattern(ctx context.Context, pattern string) error {
	it, err := store.Enumerate(ctx, m.kv, pattern, m.cfg.UseScan, m.cfg.ScanCount)
	if err != nil {
		return err
	}
	stale, err := store.CollectKeys(ctx, it)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	if m.cfg.NonBlocking {
		go func() {
			if err := m.kv.Delete(context.Background(), stale...); err != nil {
				m.log.Warnw("non-blocking delete failed", "model", m.schema.Name(), "keys", len(stale), "err", err)
			}
		}()
		return nil
	}
	return m.kv.Delete(ctx, stale...)
}

// Related resolves a foreign-reference field to the referenced instance via
// the registry. A null reference resolves to nil; a dangling one fails to
// load with a NotFoundError.
func (m *Manager) Related(ctx context.Context, inst *Instance, field string) (*Instance, error) {
	f, ok := m.schema.Field(field)
	if !ok {
		return nil, errors.NewConfigurationError(field, fmt.Sprintf("model %q has no such field", m.schema.Name()))
	}
	if f.Kind != fields.KindRef {
		return nil, errors.NewConfigurationError(field, "not a foreign-reference field")
	}
	v := inst.Get(field)
	if v == nil {
		return nil, nil
	}
	target, err := m.relatedManager(f.Model)
	if err != nil {
		return nil, err
	}
	return target.Get(ctx, v.(string))
}

// RelatedAll resolves a many-to-many field to the referenced instances, in
// stored order. Any dangling id fails the whole resolution.
func (m *Manager) RelatedAll(ctx context.Context, inst *Instance, field string) ([]*Instance, error) {
	f, ok := m.schema.Field(field)
	if !ok {
		return nil, errors.NewConfigurationError(field, fmt.Sprintf("model %q has no such field", m.schema.Name()))
	}
	if f.Kind != fields.KindManyMany {
		return nil, errors.NewConfigurationError(field, "not a many-to-many field")
	}
	v := inst.Get(field)
	if v == nil {
		return nil, nil
	}
	target, err := m.relatedManager(f.Model)
	if err != nil {
		return nil, err
	}
	ids := v.([]string)
	out := make([]*Instance, 0, len(ids))
	for _, id := range ids {
		ri, err := target.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ri)
	}
	return out, nil
}

func (m *Manager) relatedManager(model string) (*Manager, error) {
	if m.registry == nil {
		return nil, errors.NewConfigurationError(model, "manager has no registry; construct with WithRegistry to resolve relations")
	}
	return m.registry.Manager(model)
}

// writeFields writes the encoded fields of one instance. Under NonBlocking
// the writes are dispatched fire-and-forget; failures are logged only.
func (m *Manager) writeFields(ctx context.Context, id string, encoded map[string]string) error {
	model := m.schema.Name()
	if m.cfg.NonBlocking {
		go func() {
			for name, value := range encoded {
				if err := m.kv.Set(context.Background(), m.keys.Key(model, id, name), value); err != nil {
					m.log.Warnw("non-blocking write failed", "model", model, "id", id, "field", name, "err", err)
				}
			}
		}()
		return nil
	}
	for name, value := range encoded {
		if err := m.kv.Set(ctx, m.keys.Key(model, id, name), value); err != nil {
			return fmt.Errorf("write %s.%s for id %s: %w", model, name, id, err)
		}
	}
	return nil
}

// loadValues reads and decodes every schema field of one id. found is false
// when no key at all exists for the id.
func (m *Manager) loadValues(ctx context.Context, id string) (map[string]any, bool, error) {
	model := m.schema.Name()
	values := make(map[string]any, m.schema.Len())
	found := false
	for _, f := range m.schema.Fields() {
		raw, ok, err := m.kv.Get(ctx, m.keys.Key(model, id, f.Name))
		if err != nil {
			return nil, false, err
		}
		if !ok {
			values[f.Name] = nil
			continue
		}
		found = true
		v, err := f.Decode(raw)
		if err != nil {
			if m.cfg.IgnoreDecodeErrors {
				m.log.Warnw("ignoring undecodable field", "model", model, "id", id, "field", f.Name, "err", err)
				values[f.Name] = nil
				continue
			}
			return nil, false, err
		}
		values[f.Name] = v
	}
	return values, found, nil
}
