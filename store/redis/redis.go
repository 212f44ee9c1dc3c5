/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package redis implements store.KV on a Redis server. The two enumeration
// primitives map directly onto Redis commands: ListKeys issues one KEYS call,
// ScanKeys drives SCAN with MATCH and a cursor.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
)

// KV adapts a Redis client to the store.KV contract.
type KV struct {
	client goredis.UniversalClient
}

// New wraps an existing client; the caller owns its lifecycle and pooling.
func New(client goredis.UniversalClient) *KV {
	return &KV{client: client}
}

// Open connects to a single Redis endpoint, e.g. "localhost:6379".
func Open(addr string, db int) *KV {
	return New(goredis.NewClient(&goredis.Options{Addr: addr, DB: db}))
}

// Set writes one key with no expiry.
func (r *KV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Get reads one key.
func (r *KV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Delete removes keys; Redis ignores missing ones.
func (r *KV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// ListKeys issues one blocking KEYS call. Cheap on small key spaces, but it
// holds the server for the whole walk; prefer ScanKeys on busy deployments.
func (r *KV) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	return r.client.Keys(ctx, pattern).Result()
}

// ScanKeys issues one SCAN step. Redis cursors are numeric; they travel as
// decimal strings and "0" from the server means the scan is complete.
func (r *KV) ScanKeys(ctx context.Context, pattern, cursor string, count int64) ([]string, string, error) {
	var c uint64
	if cursor != "" {
		n, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("malformed scan cursor %q: %w", cursor, err)
		}
		c = n
	}
	keys, next, err := r.client.Scan(ctx, c, pattern, count).Result()
	if err != nil {
		return nil, "", err
	}
	if next == 0 {
		return keys, "", nil
	}
	return keys, strconv.FormatUint(next, 10), nil
}

// Close releases the underlying client.
func (r *KV) Close() error {
	return r.client.Close()
}
