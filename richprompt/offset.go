package richprompt

import "fmt"

// Leaves is an ordered sequence of text-bearing leaves of a rendered tree, in
// document order. Length is measured in runes.
type Leaves[L comparable] interface {
	Len() int
	At(i int) (leaf L, length int)
}

// Position is a point inside a rendered tree: a leaf and a rune index within it.
// The zero Position (zero leaf) stands for "start of an empty tree".
type Position[L comparable] struct {
	Leaf  L
	Index int
}

// ToOffset sums the lengths of all leaves before pos.Leaf and adds pos.Index.
// A leaf that is not part of the sequence, or an index outside it, is ErrOutOfRange.
func ToOffset[L comparable](leaves Leaves[L], pos Position[L]) (int, error) {
	var zero L
	n := leaves.Len()
	if n == 0 && pos.Leaf == zero {
		if pos.Index != 0 {
			return 0, fmt.Errorf("index %d in empty tree: %w", pos.Index, ErrOutOfRange)
		}
		return 0, nil
	}

	offset := 0
	for i := 0; i < n; i++ {
		leaf, length := leaves.At(i)
		if leaf == pos.Leaf {
			if pos.Index < 0 || pos.Index > length {
				return offset, fmt.Errorf("index %d outside leaf of length %d: %w", pos.Index, length, ErrOutOfRange)
			}
			return offset + pos.Index, nil
		}
		offset += length
	}
	return 0, fmt.Errorf("leaf not in tree: %w", ErrOutOfRange)
}

// ToPosition finds the first leaf whose cumulative length reaches offset.
// Offsets past the end land on the end of the last leaf, negative offsets on the
// start of the first; with no leaves the zero Position is returned. It never fails.
func ToPosition[L comparable](leaves Leaves[L], offset int) Position[L] {
	n := leaves.Len()
	if n == 0 {
		return Position[L]{}
	}
	if offset < 0 {
		offset = 0
	}

	before := 0
	for i := 0; i < n; i++ {
		leaf, length := leaves.At(i)
		if before+length >= offset {
			return Position[L]{Leaf: leaf, Index: offset - before}
		}
		before += length
	}
	last, length := leaves.At(n - 1)
	return Position[L]{Leaf: last, Index: length}
}

// TotalLength is the rune length of the concatenated leaves.
func TotalLength[L comparable](leaves Leaves[L]) int {
	total := 0
	for i := 0; i < leaves.Len(); i++ {
		_, length := leaves.At(i)
		total += length
	}
	return total
}

// ClampOffset clamps offset into [0, length]. The error reports that clamping
// happened; the returned offset is always usable.
func ClampOffset(offset, length int) (int, error) {
	switch {
	case offset < 0:
		return 0, fmt.Errorf("offset %d below 0: %w", offset, ErrOutOfRange)
	case offset > length:
		return length, fmt.Errorf("offset %d past %d: %w", offset, length, ErrOutOfRange)
	default:
		return offset, nil
	}
}
