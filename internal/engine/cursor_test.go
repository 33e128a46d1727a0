package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor_At(t *testing.T) {
	c := newCursor(3, 2)
	tests := []struct {
		j      int
		offset int64
		phase  int
	}{
		{0, 0, 0},
		{1, 0, 2},
		{2, 1, 1},
		{3, 2, 0},
		{4, 2, 2},
	}
	for _, tt := range tests {
		off, ph := c.at(tt.j)
		assert.Equal(t, tt.offset, off, "offset of output %d", tt.j)
		assert.Equal(t, tt.phase, ph, "phase of output %d", tt.j)
	}
}

func TestCursor_Available(t *testing.T) {
	tests := []struct {
		name  string
		l, m  int
		end   int64
		ahead int
		want  int
	}{
		{"nothing buffered", 3, 2, 0, 0, 0},
		{"lookahead not met", 2, 1, 4, 4, 0},
		{"upsample", 2, 1, 5, 0, 10},
		{"downsample odd span", 1, 2, 5, 0, 3},
		{"fractional", 3, 2, 2, 0, 3},
		{"with lookahead", 3, 2, 6, 4, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCursor(tt.l, tt.m)
			assert.Equal(t, tt.want, c.available(tt.end, tt.ahead))
		})
	}
}

func TestCursor_AdvanceMatchesAt(t *testing.T) {
	c := newCursor(160, 147)
	ref := newCursor(160, 147)
	for n := range 500 {
		off, ph := ref.at(n)
		assert.Equal(t, off, c.base)
		assert.Equal(t, ph, c.phase)
		c.advance(1)
	}

	// Available outputs shrink by exactly one per advance.
	c.reset()
	before := c.available(1000, 3)
	c.advance(1)
	assert.Equal(t, before-1, c.available(1000, 3))
}
