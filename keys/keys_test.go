/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLayout(t *testing.T) {
	b := NewBuilder("app")

	assert.Equal(t, "app:BotSession:42:session_token", b.Key("BotSession", "42", "session_token"))
	assert.Equal(t, "app:BotSession:42:*", b.InstancePattern("BotSession", "42"))
	assert.Equal(t, "app:BotSession:*", b.ModelPattern("BotSession"))
}

func TestParseInvertsKey(t *testing.T) {
	b := NewBuilder("app")

	model, id, field, err := b.Parse(b.Key("Task", "abc-123", "status"))
	require.NoError(t, err)
	assert.Equal(t, "Task", model)
	assert.Equal(t, "abc-123", id)
	assert.Equal(t, "status", field)

	_, _, _, err = b.Parse("other:Task:abc:status")
	assert.Error(t, err)

	_, _, _, err = b.Parse("app:Task:abc")
	assert.Error(t, err)
}

func TestInjective(t *testing.T) {
	b := NewBuilder("app")
	tuples := [][3]string{
		{"M", "1", "f"},
		{"M", "1", "g"},
		{"M", "2", "f"},
		{"N", "1", "f"},
	}
	seen := map[string]bool{}
	for _, tu := range tuples {
		k := b.Key(tu[0], tu[1], tu[2])
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
}

func TestModelPatternsNeverOverlap(t *testing.T) {
	b := NewBuilder("app")

	// Model "Bot" must not capture keys of model "BotSession": the pattern
	// literal ends with the separator, which cannot occur inside a name.
	pattern := b.ModelPattern("Bot")
	literal := strings.TrimSuffix(pattern, "*")

	assert.True(t, strings.HasPrefix(b.Key("Bot", "1", "f"), literal))
	assert.False(t, strings.HasPrefix(b.Key("BotSession", "1", "f"), literal))
}

func TestSanitizePrefix(t *testing.T) {
	assert.Equal(t, "app", SanitizePrefix("app"))
	assert.Equal(t, "abc", SanitizePrefix("a:b:c"))
	assert.Equal(t, "ab", SanitizePrefix("a*b"))
	assert.Equal(t, DefaultPrefix, SanitizePrefix(""))
	assert.Equal(t, DefaultPrefix, SanitizePrefix("::"))
}
