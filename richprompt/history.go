package richprompt

// History is a bounded undo/redo stack.
//
// Record pushes a state and clears redo. Undo and Redo take the caller's current
// state, store it on the opposite stack and return the state to restore.
type History[T any] struct {
	undo    []T
	redo    []T
	maxSize int
}

// NewHistory creates a history keeping at most maxSize entries per stack
// (0 or less means unbounded).
func NewHistory[T any](maxSize int) *History[T] {
	return &History[T]{maxSize: maxSize}
}

func (h *History[T]) trim(slice []T) []T {
	if h.maxSize <= 0 || len(slice) <= h.maxSize {
		return slice
	}
	// keep the most recent entries
	return slice[len(slice)-h.maxSize:]
}

// Record pushes state onto the undo stack and clears the redo stack.
func (h *History[T]) Record(state T) {
	h.undo = h.trim(append(h.undo, state))
	h.redo = nil
}

// Undo pops the latest recorded state, saving current for Redo.
func (h *History[T]) Undo(current T) (T, bool) {
	state, ok := pop(&h.undo)
	if ok {
		h.redo = h.trim(append(h.redo, current))
	}
	return state, ok
}

// Redo pops the latest undone state, saving current for Undo.
func (h *History[T]) Redo(current T) (T, bool) {
	state, ok := pop(&h.redo)
	if ok {
		h.undo = h.trim(append(h.undo, current))
	}
	return state, ok
}

func pop[T any](stack *[]T) (T, bool) {
	s := *stack
	if len(s) == 0 {
		var zero T
		return zero, false
	}
	state := s[len(s)-1]
	*stack = s[:len(s)-1]
	return state, true
}

// CanUndo returns true if there is something to undo.
func (h *History[T]) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo returns true if there is something to redo.
func (h *History[T]) CanRedo() bool { return len(h.redo) > 0 }

// Clear removes all entries.
func (h *History[T]) Clear() {
	h.undo = nil
	h.redo = nil
}

// UndoSize returns the number of undo entries.
func (h *History[T]) UndoSize() int { return len(h.undo) }

// RedoSize returns the number of redo entries.
func (h *History[T]) RedoSize() int { return len(h.redo) }
