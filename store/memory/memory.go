/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process implementation of the store.KV
// interface for tests and embedded use.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/suparena/kvmodels/store"
)

// KV is a thread-safe map-backed key-value store.
type KV struct {
	mu   sync.RWMutex
	data map[string]string

	setErr    error
	listErr   error
	setCalls  int
	listCalls int
	scanCalls int
}

// New creates an empty in-memory store.
func New() *KV {
	return &KV{data: make(map[string]string)}
}

// WithSetError makes subsequent Set calls fail, for write-path tests.
func (m *KV) WithSetError(err error) *KV {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
	return m
}

// WithListError makes subsequent ListKeys calls fail.
func (m *KV) WithListError(err error) *KV {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
	return m
}

// Set writes one key.
func (m *KV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

// Get reads one key.
func (m *KV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Delete removes keys; missing keys are ignored.
func (m *KV) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// ListKeys returns all matching keys in one call, sorted for determinism.
func (m *KV) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.matching(pattern), nil
}

// ScanKeys walks the sorted matching key set in batches. The cursor is the
// numeric offset into the sorted snapshot taken per call, mirroring the
// loose consistency of a real store's cursor scan.
func (m *KV) ScanKeys(ctx context.Context, pattern, cursor string, count int64) ([]string, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanCalls++

	matched := m.matching(pattern)

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", err
		}
		offset = n
	}
	if offset >= len(matched) {
		return nil, "", nil
	}
	end := offset + int(count)
	if end >= len(matched) {
		return matched[offset:], "", nil
	}
	return matched[offset:end], strconv.Itoa(end), nil
}

func (m *KV) matching(pattern string) []string {
	var keys []string
	for k := range m.data {
		if store.MatchPattern(pattern, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of stored keys.
func (m *KV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// SetCalls reports how many Set calls were made, including failed ones.
func (m *KV) SetCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.setCalls
}

// ScanCalls reports how many ScanKeys batches were requested.
func (m *KV) ScanCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanCalls
}
