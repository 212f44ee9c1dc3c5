/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe collection of managers keyed by model name.
// Relation fields resolve their target model's manager through it. There is
// no process-wide registry: callers construct one and pass it explicitly.
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*Manager
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		managers: make(map[string]*Manager),
	}
}

// Register stores the manager under its model name.
func (r *Registry) Register(m *Manager) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Schema().Name()
	if _, exists := r.managers[name]; exists {
		return fmt.Errorf("manager for model %q already registered", name)
	}
	r.managers[name] = m
	return nil
}

// Manager retrieves the registered manager for a model name.
func (r *Registry) Manager(model string) (*Manager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.managers[model]
	if !exists {
		return nil, fmt.Errorf("no manager registered for model %q", model)
	}
	return m, nil
}

// Models returns the registered model names.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	return names
}
