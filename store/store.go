/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package store defines the key-value boundary the record layer writes
// through, and the two key-enumeration strategies exposed behind a single
// lazy iterator contract.
package store

import (
	"context"
	"strings"
)

// KV is the four-primitive contract required of a backing store. Patterns
// are glob-lite: literal text optionally ending in a single '*' wildcard.
// Connectivity failures propagate unchanged; this layer adds no retries.
type KV interface {
	// Set writes one key.
	Set(ctx context.Context, key, value string) error

	// Get reads one key; the bool reports presence.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// ListKeys returns every key matching pattern in one bulk call.
	ListKeys(ctx context.Context, pattern string) ([]string, error)

	// ScanKeys returns one batch of keys matching pattern, of roughly count
	// items, plus the cursor for the next batch. An empty cursor starts a
	// scan; an empty returned cursor ends it. The store may mutate between
	// batches, so a scan is not a consistent snapshot.
	ScanKeys(ctx context.Context, pattern, cursor string, count int64) ([]string, string, error)
}

// SplitPattern separates a glob-lite pattern into its literal part and
// whether it ends in a wildcard. Backends without native glob support match
// on the literal prefix.
func SplitPattern(pattern string) (literal string, wildcard bool) {
	if strings.HasSuffix(pattern, "*") {
		return pattern[:len(pattern)-1], true
	}
	return pattern, false
}

// MatchPattern reports whether key matches a glob-lite pattern.
func MatchPattern(pattern, key string) bool {
	literal, wildcard := SplitPattern(pattern)
	if wildcard {
		return strings.HasPrefix(key, literal)
	}
	return key == literal
}

// KeyIterator is a finite, single-pass, lazy sequence of keys. A fresh
// enumeration requires a fresh iterator; abandoning one mid-way is safe and
// requires no cleanup.
type KeyIterator interface {
	// Next returns the next key. The bool is false once the sequence is
	// exhausted, after which Next keeps returning false.
	Next(ctx context.Context) (string, bool, error)
}

// DefaultScanCount is the batch size used when the caller configures none.
const DefaultScanCount = 100

// Enumerate returns the lazy key sequence for a pattern using the configured
// strategy. Eager enumeration issues one bulk list call up front; scan
// enumeration pulls bounded batches as the iterator is consumed.
func Enumerate(ctx context.Context, kv KV, pattern string, useScan bool, count int64) (KeyIterator, error) {
	if count <= 0 {
		count = DefaultScanCount
	}
	if useScan {
		return &scanIterator{kv: kv, pattern: pattern, count: count}, nil
	}
	keys, err := kv.ListKeys(ctx, pattern)
	if err != nil {
		return nil, err
	}
	return &sliceIterator{keys: keys}, nil
}

// sliceIterator iterates a fully materialized key list.
type sliceIterator struct {
	keys []string
	pos  int
}

func (it *sliceIterator) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if it.pos >= len(it.keys) {
		return "", false, nil
	}
	k := it.keys[it.pos]
	it.pos++
	return k, true, nil
}

// scanIterator pulls batches from KV.ScanKeys on demand. Keys created or
// removed while the scan is in flight may or may not appear.
type scanIterator struct {
	kv      KV
	pattern string
	count   int64

	cursor string
	buf    []string
	pos    int
	done   bool
}

func (it *scanIterator) Next(ctx context.Context) (string, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		if it.pos < len(it.buf) {
			k := it.buf[it.pos]
			it.pos++
			return k, true, nil
		}
		if it.done {
			return "", false, nil
		}
		batch, next, err := it.kv.ScanKeys(ctx, it.pattern, it.cursor, it.count)
		if err != nil {
			it.done = true
			return "", false, err
		}
		it.cursor = next
		it.buf = batch
		it.pos = 0
		if next == "" {
			it.done = true
		}
	}
}

// CollectKeys drains an iterator. Intended for small result sets and tests.
func CollectKeys(ctx context.Context, it KeyIterator) ([]string, error) {
	var keys []string
	for {
		k, ok, err := it.Next(ctx)
		if err != nil {
			return keys, err
		}
		if !ok {
			return keys, nil
		}
		keys = append(keys, k)
	}
}
