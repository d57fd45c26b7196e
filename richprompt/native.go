package richprompt

import (
	"unicode/utf8"

	"golang.org/x/net/html"
)

// The operations below edit the rendered tree in place, the way a content-editable
// surface changes its text nodes before telling anyone. They leave the model stale;
// the host follows each one with OnUserEdit(Event{Kind: EventInput}).

// InsertText inserts s into the caret's leaf and moves the caret past it.
func (v *Editor) InsertText(s string) {
	if s == "" {
		return
	}
	leaf, idx := v.caretLeaf()
	v.markEdit()
	if leaf == nil {
		leaf = &html.Node{Type: html.TextNode}
		v.root.AppendChild(leaf)
		idx = 0
	}
	runes := []rune(leaf.Data)
	leaf.Data = string(runes[:idx]) + s + string(runes[idx:])
	v.caret = Caret{Leaf: leaf, Index: idx + utf8.RuneCountInString(s)}
}

// DeleteBackward removes the rune before the caret. It reports whether anything
// was removed.
func (v *Editor) DeleteBackward() bool {
	leaves := TextLeaves(v.root)
	leaf, idx := v.caretLeaf()
	if leaf == nil {
		return false
	}
	// step back over leaves that have nothing before the caret
	for idx == 0 {
		prev := previousLeaf(leaves, leaf)
		if prev == nil {
			return false
		}
		leaf, idx = prev, utf8.RuneCountInString(prev.Data)
	}
	v.markEdit()
	runes := []rune(leaf.Data)
	leaf.Data = string(runes[:idx-1]) + string(runes[idx:])
	v.caret = Caret{Leaf: leaf, Index: idx - 1}
	return true
}

// DeleteForward removes the rune after the caret.
func (v *Editor) DeleteForward() bool {
	leaves := TextLeaves(v.root)
	leaf, idx := v.caretLeaf()
	if leaf == nil {
		return false
	}
	caret := Caret{Leaf: leaf, Index: idx}
	for idx >= utf8.RuneCountInString(leaf.Data) {
		next := nextLeaf(leaves, leaf)
		if next == nil {
			return false
		}
		leaf, idx = next, 0
	}
	v.markEdit()
	runes := []rune(leaf.Data)
	leaf.Data = string(runes[:idx]) + string(runes[idx+1:])
	if caret.Leaf != leaf {
		// the caret stays where it was; it is now followed by the next remaining rune
		v.caret = caret
		return true
	}
	v.caret = Caret{Leaf: leaf, Index: idx}
	return true
}

// markEdit remembers the caret offset from before the first in-place edit since
// the last commit, for the undo entry the following EventInput records.
func (v *Editor) markEdit() {
	if v.editPending {
		return
	}
	v.editCaret = v.CaretOffset()
	v.editPending = true
}

// caretLeaf returns the caret's leaf and index, re-resolving a caret that no longer
// points into the tree. A tree without text yields a nil leaf.
func (v *Editor) caretLeaf() (*html.Node, int) {
	if _, err := OffsetOf(v.root, v.caret); err != nil {
		v.caret = CaretAt(v.root, v.CaretOffset())
	}
	return v.caret.Leaf, v.caret.Index
}

func previousLeaf(leaves NodeLeaves, leaf *html.Node) *html.Node {
	for i, l := range leaves {
		if l == leaf && i > 0 {
			return leaves[i-1]
		}
	}
	return nil
}

func nextLeaf(leaves NodeLeaves, leaf *html.Node) *html.Node {
	for i, l := range leaves {
		if l == leaf && i+1 < len(leaves) {
			return leaves[i+1]
		}
	}
	return nil
}
