/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kverrors "github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/fields"
	"github.com/suparena/kvmodels/schema"
	"github.com/suparena/kvmodels/store/memory"
)

func sessionSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("BotSession",
		fields.String("session_token", fields.NotNull()),
		fields.Bool("is_active", fields.WithDefault(true)),
		fields.DateTime("created", fields.WithDefaultFunc(func() any { return time.Now() })),
		fields.Decimal("balance"),
		fields.List("tags"),
	)
	require.NoError(t, err)
	return s
}

func taskSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("Task",
		fields.String("name"),
		fields.String("status",
			fields.WithDefault("in_work"),
			fields.WithChoices("in_work", "completed", "failed_bot")),
		fields.Ref("bot_session", "BotSession"),
		fields.ManyToMany("watchers", "BotSession"),
	)
	require.NoError(t, err)
	return s
}

// newTestEnv builds a BotSession and a Task manager over a shared in-memory
// store and registry.
func newTestEnv(t *testing.T, cfg Config) (*memory.KV, *Manager, *Manager) {
	t.Helper()
	kv := memory.New()
	reg := NewRegistry()
	sessions, err := New(kv, sessionSchema(t), cfg, WithRegistry(reg))
	require.NoError(t, err)
	tasks, err := New(kv, taskSchema(t), cfg, WithRegistry(reg))
	require.NoError(t, err)
	return kv, sessions, tasks
}

func TestNewRejectsNilInputs(t *testing.T) {
	_, err := New(nil, sessionSchema(t), Config{})
	assert.True(t, kverrors.IsConfiguration(err))

	_, err = New(memory.New(), nil, Config{})
	assert.True(t, kverrors.IsConfiguration(err))
}

func TestCreateAssignsIDAndAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	inst, err := sessions.Create(ctx, map[string]any{"session_token": "tok-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, inst.ID())
	assert.Equal(t, "BotSession", inst.Model())
	assert.Equal(t, true, inst.Get("is_active"))
	assert.IsType(t, time.Time{}, inst.Get("created"))
	assert.Nil(t, inst.Get("balance"))

	// Distinct creates get distinct ids.
	other, err := sessions.Create(ctx, map[string]any{"session_token": "tok-2"})
	require.NoError(t, err)
	assert.NotEqual(t, inst.ID(), other.ID())

	loaded, err := sessions.Get(ctx, inst.ID())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", loaded.Get("session_token"))
	assert.Equal(t, true, loaded.Get("is_active"))
}

func TestCreateFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	kv, sessions, tasks := newTestEnv(t, Config{Prefix: "app"})

	cases := []struct {
		name   string
		mgr    *Manager
		values map[string]any
	}{
		{"unknown field", sessions, map[string]any{"no_such_field": 1}},
		{"null on non-nullable", sessions, map[string]any{"session_token": nil}},
		{"omitted non-nullable without default", sessions, map[string]any{}},
		{"type mismatch", sessions, map[string]any{"session_token": 42}},
		{"NUL in string", sessions, map[string]any{"session_token": "a\x00b"}},
		{"choice violation", tasks, map[string]any{"status": "paused"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.mgr.Create(ctx, tc.values)
			require.Error(t, err)
			assert.True(t, kverrors.IsValidation(err), "want validation error, got %v", err)
		})
	}
	assert.Zero(t, kv.SetCalls(), "failed creates must not touch the store")
	assert.Zero(t, kv.Len())
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{})

	_, err := sessions.Get(ctx, "missing-id")
	require.Error(t, err)
	assert.True(t, kverrors.IsNotFound(err))
	var nf *kverrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "BotSession", nf.Model)
	assert.Equal(t, "missing-id", nf.ID)
}

func TestQueryExactAndCaseFolding(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	inst, err := sessions.Create(ctx, map[string]any{"session_token": "Alpha"})
	require.NoError(t, err)
	_, err = sessions.Create(ctx, map[string]any{"session_token": "beta"})
	require.NoError(t, err)

	got, err := mustAll(ctx, sessions, map[string]any{"session_token": "Alpha"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inst.ID(), got[0].ID())

	// exact is case-sensitive, iexact folds.
	got, err = mustAll(ctx, sessions, map[string]any{"session_token": "alpha"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = mustAll(ctx, sessions, map[string]any{"session_token__iexact": "ALPHA"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inst.ID(), got[0].ID())

	got, err = mustAll(ctx, sessions, map[string]any{"session_token": "gamma"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func mustAll(ctx context.Context, m *Manager, filters map[string]any) ([]*Instance, error) {
	cur, err := m.Query(ctx, filters)
	if err != nil {
		return nil, err
	}
	return cur.All(ctx)
}

func TestQueryOrderedOperators(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	day1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	early, err := sessions.Create(ctx, map[string]any{"session_token": "early", "created": day1})
	require.NoError(t, err)
	late, err := sessions.Create(ctx, map[string]any{"session_token": "late", "created": day2})
	require.NoError(t, err)

	got, err := mustAll(ctx, sessions, map[string]any{"created__gte": day2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, late.ID(), got[0].ID())

	got, err = mustAll(ctx, sessions, map[string]any{"created__lt": day2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, early.ID(), got[0].ID())

	// Range bounds are inclusive on both ends.
	got, err = mustAll(ctx, sessions, map[string]any{"created__range": []any{day1, day2}})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestQueryConjunction(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	a, err := sessions.Create(ctx, map[string]any{"session_token": "tok-a", "is_active": true})
	require.NoError(t, err)
	_, err = sessions.Create(ctx, map[string]any{"session_token": "tok-a", "is_active": false})
	require.NoError(t, err)
	_, err = sessions.Create(ctx, map[string]any{"session_token": "tok-b", "is_active": true})
	require.NoError(t, err)

	got, err := mustAll(ctx, sessions, map[string]any{
		"session_token": "tok-a",
		"is_active":     true,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID(), got[0].ID())
}

func TestQueryIsNull(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	funded, err := sessions.Create(ctx, map[string]any{"session_token": "t1", "balance": decimal.NewFromInt(10)})
	require.NoError(t, err)
	unfunded, err := sessions.Create(ctx, map[string]any{"session_token": "t2"})
	require.NoError(t, err)

	got, err := mustAll(ctx, sessions, map[string]any{"balance__isnull": true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, unfunded.ID(), got[0].ID())

	got, err = mustAll(ctx, sessions, map[string]any{"balance__isnull": false})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, funded.ID(), got[0].ID())

	// A null field matches nothing but isnull=true.
	got, err = mustAll(ctx, sessions, map[string]any{"balance__gte": decimal.NewFromInt(0)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, funded.ID(), got[0].ID())
}

func TestQueryBadFilterFailsBeforeEnumeration(t *testing.T) {
	ctx := context.Background()
	kv, sessions, _ := newTestEnv(t, Config{Prefix: "app"})
	kv.WithListError(errors.New("list should not be called"))

	_, err := sessions.Query(ctx, map[string]any{"session_token__frobnicate": "x"})
	require.Error(t, err)
	assert.True(t, kverrors.IsConfiguration(err))

	_, err = sessions.Query(ctx, map[string]any{"is_active__contains": "tr"})
	require.Error(t, err)
	assert.True(t, kverrors.IsConfiguration(err))
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	_, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	inst, err := sessions.Create(ctx, map[string]any{"session_token": "tok", "is_active": true})
	require.NoError(t, err)

	updated, err := sessions.Update(ctx, inst.ID(), map[string]any{"is_active": false})
	require.NoError(t, err)
	assert.Equal(t, false, updated.Get("is_active"))
	assert.Equal(t, "tok", updated.Get("session_token"))

	loaded, err := sessions.Get(ctx, inst.ID())
	require.NoError(t, err)
	assert.Equal(t, false, loaded.Get("is_active"))
	assert.Equal(t, "tok", loaded.Get("session_token"))

	_, err = sessions.Update(ctx, "missing-id", map[string]any{"is_active": false})
	assert.True(t, kverrors.IsNotFound(err))

	_, err = sessions.Update(ctx, inst.ID(), map[string]any{"bogus": 1})
	assert.True(t, kverrors.IsValidation(err))
}

func TestSaveRewritesWholeInstance(t *testing.T) {
	ctx := context.Background()
	_, sessions, tasks := newTestEnv(t, Config{Prefix: "app"})

	inst, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
	require.NoError(t, err)

	inst.Set("session_token", "tok-2")
	inst.Set("balance", decimal.NewFromInt(5))
	require.NoError(t, sessions.Save(ctx, inst))

	loaded, err := sessions.Get(ctx, inst.ID())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", loaded.Get("session_token"))
	assert.True(t, decimal.NewFromInt(5).Equal(loaded.Get("balance").(decimal.Decimal)))

	// A manager only saves instances of its own model.
	err = tasks.Save(ctx, inst)
	assert.True(t, kverrors.IsValidation(err))
	err = sessions.Save(ctx, nil)
	assert.True(t, kverrors.IsValidation(err))
}

func TestDeleteRemovesAllFieldKeys(t *testing.T) {
	ctx := context.Background()
	kv, sessions, _ := newTestEnv(t, Config{Prefix: "app"})

	inst, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
	require.NoError(t, err)
	require.NotZero(t, kv.Len())

	require.NoError(t, sessions.Delete(ctx, inst.ID()))
	assert.Zero(t, kv.Len())

	_, err = sessions.Get(ctx, inst.ID())
	assert.True(t, kverrors.IsNotFound(err))

	// Deleting again is not an error.
	assert.NoError(t, sessions.Delete(ctx, inst.ID()))
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	_, sessions, tasks := newTestEnv(t, Config{Prefix: "app"})

	for i := 0; i < 3; i++ {
		_, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
		require.NoError(t, err)
	}
	task, err := tasks.Create(ctx, map[string]any{"name": "keepme"})
	require.NoError(t, err)

	require.NoError(t, sessions.DeleteAll(ctx))

	cur, err := sessions.All(ctx)
	require.NoError(t, err)
	n, err := cur.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Other models are untouched.
	_, err = tasks.Get(ctx, task.ID())
	assert.NoError(t, err)
}

func TestRelatedResolution(t *testing.T) {
	ctx := context.Background()
	_, sessions, tasks := newTestEnv(t, Config{Prefix: "app"})

	session, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
	require.NoError(t, err)
	watcher, err := sessions.Create(ctx, map[string]any{"session_token": "tok-w"})
	require.NoError(t, err)

	task, err := tasks.Create(ctx, map[string]any{
		"name":        "crawl",
		"bot_session": session,
		"watchers":    []any{watcher, session.ID()},
	})
	require.NoError(t, err)

	// Ref decodes to the raw id; Related resolves it.
	assert.Equal(t, session.ID(), task.Get("bot_session"))
	resolved, err := tasks.Related(ctx, task, "bot_session")
	require.NoError(t, err)
	assert.Equal(t, session.ID(), resolved.ID())
	assert.Equal(t, "tok", resolved.Get("session_token"))

	all, err := tasks.RelatedAll(ctx, task, "watchers")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, watcher.ID(), all[0].ID())
	assert.Equal(t, session.ID(), all[1].ID())

	// Null reference resolves to nil without error.
	bare, err := tasks.Create(ctx, map[string]any{"name": "bare"})
	require.NoError(t, err)
	resolved, err = tasks.Related(ctx, bare, "bot_session")
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// Dangling reference surfaces the target's not-found.
	require.NoError(t, sessions.Delete(ctx, session.ID()))
	_, err = tasks.Related(ctx, task, "bot_session")
	assert.True(t, kverrors.IsNotFound(err))
	_, err = tasks.RelatedAll(ctx, task, "watchers")
	assert.True(t, kverrors.IsNotFound(err))

	// Wrong field kinds are configuration errors.
	_, err = tasks.Related(ctx, task, "watchers")
	assert.True(t, kverrors.IsConfiguration(err))
	_, err = tasks.RelatedAll(ctx, task, "bot_session")
	assert.True(t, kverrors.IsConfiguration(err))
}

func TestRelatedWithoutRegistry(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	tasks, err := New(kv, taskSchema(t), Config{})
	require.NoError(t, err)

	task, err := tasks.Create(ctx, map[string]any{"name": "x", "bot_session": "some-id"})
	require.NoError(t, err)
	_, err = tasks.Related(ctx, task, "bot_session")
	assert.True(t, kverrors.IsConfiguration(err))
}

func TestScanAndEagerEnumerationAgree(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	eager, err := New(kv, sessionSchema(t), Config{Prefix: "app"})
	require.NoError(t, err)
	scanning, err := New(kv, sessionSchema(t), Config{Prefix: "app", UseScan: true, ScanCount: 3})
	require.NoError(t, err)

	var want []string
	for i := 0; i < 7; i++ {
		inst, err := eager.Create(ctx, map[string]any{"session_token": "tok"})
		require.NoError(t, err)
		want = append(want, inst.ID())
	}

	eagerGot, err := mustAll(ctx, eager, nil)
	require.NoError(t, err)
	scanGot, err := mustAll(ctx, scanning, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, ids(eagerGot), want)
	assert.ElementsMatch(t, ids(scanGot), want)
	assert.Greater(t, kv.ScanCalls(), 1, "scan strategy should fetch in batches")
}

func ids(instances []*Instance) []string {
	out := make([]string, len(instances))
	for i, inst := range instances {
		out[i] = inst.ID()
	}
	return out
}

func TestNonBlockingWrites(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	sessions, err := New(kv, sessionSchema(t), Config{Prefix: "app", NonBlocking: true})
	require.NoError(t, err)

	inst, err := sessions.Create(ctx, map[string]any{"session_token": "tok"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, err := sessions.Get(ctx, inst.ID())
		return err == nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sessions.Delete(ctx, inst.ID()))
	require.Eventually(t, func() bool { return kv.Len() == 0 }, time.Second, 5*time.Millisecond)

	// Write failures after dispatch are logged, not returned.
	kv.WithSetError(errors.New("store down"))
	_, err = sessions.Create(ctx, map[string]any{"session_token": "tok"})
	assert.NoError(t, err)
}

func TestIgnoreDecodeErrorsPolicy(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	strict, err := New(kv, sessionSchema(t), Config{Prefix: "app"})
	require.NoError(t, err)
	lenient, err := New(kv, sessionSchema(t), Config{Prefix: "app", IgnoreDecodeErrors: true})
	require.NoError(t, err)

	inst, err := strict.Create(ctx, map[string]any{"session_token": "tok"})
	require.NoError(t, err)

	// Corrupt one stored field behind the manager's back.
	key := strict.Keys().Key("BotSession", inst.ID(), "created")
	require.NoError(t, kv.Set(ctx, key, "not-a-timestamp"))

	_, err = strict.Get(ctx, inst.ID())
	require.Error(t, err)
	assert.True(t, kverrors.IsDecode(err))

	loaded, err := lenient.Get(ctx, inst.ID())
	require.NoError(t, err)
	assert.Nil(t, loaded.Get("created"))
	assert.Equal(t, "tok", loaded.Get("session_token"))
}

func TestRegistryDuplicateModel(t *testing.T) {
	kv := memory.New()
	reg := NewRegistry()

	_, err := New(kv, sessionSchema(t), Config{}, WithRegistry(reg))
	require.NoError(t, err)
	_, err = New(kv, sessionSchema(t), Config{}, WithRegistry(reg))
	require.Error(t, err)

	assert.Equal(t, []string{"BotSession"}, reg.Models())
	_, err = reg.Manager("Task")
	assert.Error(t, err)
}
