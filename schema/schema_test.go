/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/fields"
)

func TestNew(t *testing.T) {
	s, err := New("BotSession",
		fields.String("session_token"),
		fields.DateTime("created"),
	)
	require.NoError(t, err)

	assert.Equal(t, "BotSession", s.Name())
	assert.Equal(t, 2, s.Len())

	// Declaration order is preserved.
	fs := s.Fields()
	assert.Equal(t, "session_token", fs[0].Name)
	assert.Equal(t, "created", fs[1].Name)

	f, ok := s.Field("created")
	assert.True(t, ok)
	assert.Equal(t, fields.KindDateTime, f.Kind)

	_, ok = s.Field("missing")
	assert.False(t, ok)
}

func TestNewRejectsBadDefinitions(t *testing.T) {
	cases := []struct {
		name   string
		model  string
		fields []fields.Field
	}{
		{"empty model name", "", nil},
		{"separator in model name", "Bot:Session", nil},
		{"wildcard in model name", "Bot*", nil},
		{"empty field name", "M", []fields.Field{fields.String("")}},
		{"separator in field name", "M", []fields.Field{fields.String("a:b")}},
		{"duplicate field", "M", []fields.Field{fields.String("a"), fields.Number("a")}},
		{"ref without model", "M", []fields.Field{{Name: "r", Kind: fields.KindRef, Null: true}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.model, tc.fields...)
			assert.True(t, errors.IsConfiguration(err), "expected configuration error, got %v", err)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	doc := `
models:
  - name: BotSession
    fields:
      - name: session_token
        kind: string
      - name: created
        kind: datetime
  - name: Task
    fields:
      - name: bot_session
        kind: ref
        model: BotSession
      - name: status
        kind: string
        default: in_work
        "null": false
        choices: [in_work, completed, failed_bot]
`
	schemas, err := LoadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	assert.Equal(t, "BotSession", schemas[0].Name())

	task := schemas[1]
	status, ok := task.Field("status")
	require.True(t, ok)
	assert.False(t, status.Null)
	assert.Equal(t, "in_work", status.Default)
	assert.Len(t, status.Choices, 3)

	ref, ok := task.Field("bot_session")
	require.True(t, ok)
	assert.Equal(t, fields.KindRef, ref.Kind)
	assert.Equal(t, "BotSession", ref.Model)
}

func TestLoadYAMLErrors(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		doc := "models:\n  - name: M\n    fields:\n      - name: f\n        kind: varchar\n"
		_, err := LoadYAML(strings.NewReader(doc))
		assert.True(t, errors.IsConfiguration(err))
	})

	t.Run("no models", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("models: []\n"))
		assert.True(t, errors.IsConfiguration(err))
	})

	t.Run("not yaml", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("\t{{{"))
		assert.Error(t, err)
	})
}
