/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/kvmodels/store/memory"
)

func TestCursorIsSinglePass(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	for i := 0; i < 3; i++ {
		_, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
		require.NoError(t, err)
	}

	cur, err := sessions.All(ctx)
	require.NoError(t, err)

	var n int
	for cur.Next(ctx) {
		require.NotNil(t, cur.Instance())
		n++
	}
	require.NoError(t, cur.Err())
	assert.Equal(t, 3, n)

	// A drained cursor stays drained.
	assert.False(t, cur.Next(ctx))
	assert.Nil(t, cur.Instance())
	again, err := cur.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestCursorCount(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	for i := 0; i < 4; i++ {
		_, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
		require.NoError(t, err)
	}

	cur, err := sessions.Query(ctx, map[string]any{"session_token": "tok"})
	require.NoError(t, err)
	n, err := cur.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestCursorYieldsEachInstanceOnce(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	// Every instance stores several field keys under the model pattern, so
	// deduplication by id is what keeps one instance from appearing per key.
	inst, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
	require.NoError(t, err)

	got, err := mustAll(ctx, sessions, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inst.ID(), got[0].ID())
}

func TestCursorSkipsForeignKeys(t *testing.T) {
	ctx := context.Background()
	kv, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	_, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
	require.NoError(t, err)
	// A key under the model pattern that does not follow the field-key
	// layout is ignored rather than failing the query.
	require.NoError(t, kv.Set(ctx, "app:BotSession:stray", "x"))

	got, err := mustAll(ctx, sessions, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCursorLaziness(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	sessions, err := New(kv, sessionSchema(t), Config{Prefix: "app", UseScan: true, ScanCount: 2})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
		require.NoError(t, err)
	}
	before := kv.ScanCalls()

	cur, err := sessions.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, kv.ScanCalls(), "no store calls before the first advance")

	require.True(t, cur.Next(ctx))
	used := kv.ScanCalls() - before
	assert.Less(t, used, 5, "first advance should not walk the whole key space")
}

func TestSortBy(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	tokens := []string{"c", "a", "b"}
	for i, tok := range tokens {
		_, err := sessions.Create(ctx, map[string]any{
			"session_token": tok,
			"balance":       decimal.NewFromInt(int64(3 - i)),
		})
		require.NoError(t, err)
	}
	// One instance with no balance sorts first ascending.
	_, err := sessions.Create(ctx, map[string]any{"session_token": "z"})
	require.NoError(t, err)

	instances, err := mustAll(ctx, sessions, nil)
	require.NoError(t, err)
	require.Len(t, instances, 4)

	require.NoError(t, SortBy(instances, "session_token", false))
	assert.Equal(t, []string{"a", "b", "c", "z"}, tokensOf(instances))

	require.NoError(t, SortBy(instances, "session_token", true))
	assert.Equal(t, []string{"z", "c", "b", "a"}, tokensOf(instances))

	require.NoError(t, SortBy(instances, "balance", false))
	assert.Equal(t, []string{"z", "b", "a", "c"}, tokensOf(instances))
}

func tokensOf(instances []*Instance) []string {
	out := make([]string, len(instances))
	for i, inst := range instances {
		out[i] = inst.Get("session_token").(string)
	}
	return out
}
