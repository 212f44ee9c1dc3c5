/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"context"
	"sort"

	kverrors "github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/filter"
	"github.com/suparena/kvmodels/store"
)

// Cursor is the single-pass result sequence of a query. It pulls candidate
// keys lazily from the enumeration strategy, loads and evaluates each
// instance exactly once, and stops issuing store calls as soon as the caller
// stops advancing it. A fresh query is needed to iterate again.
//
//	cur, err := mgr.Query(ctx, map[string]any{"status": "in_work"})
//	...
//	for cur.Next(ctx) {
//	    inst := cur.Instance()
//	    ...
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor struct {
	mgr     *Manager
	it      store.KeyIterator
	triples []filter.Triple
	seen    map[string]bool

	cur  *Instance
	err  error
	done bool
}

// Next advances to the next matching instance. It returns false at the end
// of the sequence or on error; Err distinguishes the two.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.done {
		return false
	}
	for {
		key, ok, err := c.it.Next(ctx)
		if err != nil {
			c.fail(err)
			return false
		}
		if !ok {
			c.done = true
			c.cur = nil
			return false
		}

		_, id, _, err := c.mgr.Keys().Parse(key)
		if err != nil {
			// Foreign keys under the model pattern are not ours to judge.
			c.mgr.log.Debugw("skipping unparseable key", "key", key, "err", err)
			continue
		}
		if c.seen[id] {
			continue
		}
		c.seen[id] = true

		inst, err := c.mgr.Get(ctx, id)
		if err != nil {
			// The instance may have been deleted between enumeration and
			// load; an incremental scan makes no snapshot promise.
			if kverrors.IsNotFound(err) {
				continue
			}
			c.fail(err)
			return false
		}

		match, err := filter.MatchAll(c.triples, inst.values)
		if err != nil {
			c.fail(err)
			return false
		}
		if match {
			c.cur = inst
			return true
		}
	}
}

func (c *Cursor) fail(err error) {
	c.err = err
	c.done = true
	c.cur = nil
}

// Instance returns the instance the cursor currently points at.
func (c *Cursor) Instance() *Instance { return c.cur }

// Err returns the error that terminated iteration, if any.
func (c *Cursor) Err() error { return c.err }

// All drains the cursor into a slice.
func (c *Cursor) All(ctx context.Context) ([]*Instance, error) {
	var out []*Instance
	for c.Next(ctx) {
		out = append(out, c.cur)
	}
	return out, c.err
}

// Count drains the cursor and returns the number of matches.
func (c *Cursor) Count(ctx context.Context) (int, error) {
	n := 0
	for c.Next(ctx) {
		n++
	}
	return n, c.err
}

// SortBy orders instances by one field, absent values first. Enumeration
// itself guarantees no order, so sorting is an explicit post-step on
// collected results.
func SortBy(instances []*Instance, field string, descending bool) error {
	var sortErr error
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i].Get(field), instances[j].Get(field)
		if a == nil || b == nil {
			less := a == nil && b != nil
			if descending {
				return !less && a != b
			}
			return less
		}
		c, err := filter.Compare(a, b)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		if descending {
			return c > 0
		}
		return c < 0
	})
	return sortErr
}
