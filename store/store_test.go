/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPattern(t *testing.T) {
	literal, wildcard := SplitPattern("app:Model:*")
	assert.Equal(t, "app:Model:", literal)
	assert.True(t, wildcard)

	literal, wildcard = SplitPattern("app:Model:1:f")
	assert.Equal(t, "app:Model:1:f", literal)
	assert.False(t, wildcard)
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"app:M:*", "app:M:1:f", true},
		{"app:M:*", "app:MM:1:f", false},
		{"app:M:1:f", "app:M:1:f", true},
		{"app:M:1:f", "app:M:1:g", false},
		{"*", "anything", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchPattern(tc.pattern, tc.key), "%s vs %s", tc.pattern, tc.key)
	}
}
