package richprompt

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stringLeaves identifies leaves by their 1-based position.
type stringLeaves []string

func (l stringLeaves) Len() int { return len(l) }

func (l stringLeaves) At(i int) (int, int) { return i + 1, utf8.RuneCountInString(l[i]) }

func TestToOffset(t *testing.T) {
	leaves := stringLeaves{"ab", "", "cdé", "f"}

	tests := []struct {
		name string
		pos  Position[int]
		want int
	}{
		{"first leaf start", Position[int]{Leaf: 1, Index: 0}, 0},
		{"first leaf end", Position[int]{Leaf: 1, Index: 2}, 2},
		{"empty leaf", Position[int]{Leaf: 2, Index: 0}, 2},
		{"multibyte leaf", Position[int]{Leaf: 3, Index: 3}, 5},
		{"last leaf end", Position[int]{Leaf: 4, Index: 1}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToOffset[int](leaves, tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToOffset_OutOfRange(t *testing.T) {
	leaves := stringLeaves{"ab", "c"}

	_, err := ToOffset[int](leaves, Position[int]{Leaf: 9, Index: 0})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ToOffset[int](leaves, Position[int]{Leaf: 1, Index: 3})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ToOffset[int](leaves, Position[int]{Leaf: 2, Index: -1})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestToPosition(t *testing.T) {
	leaves := stringLeaves{"ab", "", "cdé"}

	tests := []struct {
		name   string
		offset int
		want   Position[int]
	}{
		{"start", 0, Position[int]{Leaf: 1, Index: 0}},
		{"boundary prefers earlier leaf", 2, Position[int]{Leaf: 1, Index: 2}},
		{"inside later leaf", 3, Position[int]{Leaf: 3, Index: 1}},
		{"end", 5, Position[int]{Leaf: 3, Index: 3}},
		{"past the end clamps", 50, Position[int]{Leaf: 3, Index: 3}},
		{"negative clamps", -4, Position[int]{Leaf: 1, Index: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPosition[int](leaves, tt.offset))
		})
	}
}

func TestToPosition_NoLeaves(t *testing.T) {
	pos := ToPosition[int](stringLeaves{}, 3)
	assert.Equal(t, Position[int]{}, pos)

	off, err := ToOffset[int](stringLeaves{}, pos)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
}

func TestClampOffset(t *testing.T) {
	got, err := ClampOffset(3, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = ClampOffset(-1, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 0, got)

	got, err = ClampOffset(6, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 5, got)
}
