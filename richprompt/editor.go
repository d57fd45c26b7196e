package richprompt

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// TabIndent is what the Tab key inserts.
const TabIndent = "    "

// EventKind identifies the class of a user edit.
type EventKind int

const (
	// EventInput means the rendered tree's text was changed directly (typing,
	// deleting, pasting). The model is re-read from the tree.
	EventInput EventKind = iota
	EventTab
	EventEnter
)

// Event is one user edit delivered to Editor.OnUserEdit.
type Event struct {
	Kind     EventKind
	Modifier bool
}

// NameSource supplies the current known-name snapshot. *Catalog implements it.
type NameSource interface {
	Snapshot() *Names
}

// EditState is what undo/redo restores.
type EditState struct {
	Text  string
	Caret int
}

// EditorOptions configures an Editor.
type EditorOptions struct {
	Highlighter *Highlighter
	Names       NameSource
	HistoryMax  int
}

// Editor owns the plain-text model, the rendered tree built from it and the caret.
//
// Every change runs the same cycle: capture the caret offset, build the new text,
// normalize it, highlight, parse, swap the tree in, put the caret back. The new
// tree is built completely before any state changes, so a failed cycle leaves the
// editor as it was.
type Editor struct {
	// model
	text   string
	markup string
	root   *html.Node
	caret  Caret

	// caret before the pending in-place edits, see markEdit
	editCaret   int
	editPending bool

	// history
	history *History[EditState]

	// strategies
	highlighter *Highlighter
	names       NameSource

	lastErr error
}

// NewEditor creates an editor holding empty text.
func NewEditor(opts EditorOptions) *Editor {
	h := opts.Highlighter
	if h == nil {
		h = NewHighlighter(DefaultPalette())
	}
	names := opts.Names
	if names == nil {
		names = NewCatalog(nil)
	}
	hmax := opts.HistoryMax
	if hmax <= 0 {
		hmax = 100
	}

	v := &Editor{
		history:     NewHistory[EditState](hmax),
		highlighter: h,
		names:       names,
	}
	v.lastErr = v.commit("", 0)
	return v
}

// Text returns the plain-text model.
func (v *Editor) Text() string { return v.text }

// Markup returns the highlighted markup of the current text.
func (v *Editor) Markup() string { return v.markup }

// Root returns the rendered tree. Callers may edit its text leaves (see InsertText)
// and must then fire EventInput.
func (v *Editor) Root() *html.Node { return v.root }

// Caret returns the caret as a tree position.
func (v *Editor) Caret() Caret { return v.caret }

// Names returns the name snapshot the next render will use.
func (v *Editor) Names() *Names { return v.names.Snapshot() }

// LastError returns the error of the last failed render, if any.
func (v *Editor) LastError() error { return v.lastErr }

// CaretOffset returns the caret as a rune offset. A caret that no longer points
// into the tree is treated as the end of the text.
func (v *Editor) CaretOffset() int {
	off, err := OffsetOf(v.root, v.caret)
	if err != nil {
		return TotalLength[*html.Node](TextLeaves(v.root))
	}
	return off
}

// OnUserEdit runs one edit cycle. It returns false when the event is not the
// editor's to handle (Modifier+Enter belongs to the host).
func (v *Editor) OnUserEdit(ev Event) bool {
	switch ev.Kind {
	case EventTab:
		v.insert(TabIndent)
	case EventEnter:
		if ev.Modifier {
			return false
		}
		v.insert("\n")
	case EventInput:
		offset := v.CaretOffset()
		v.apply(TextContent(v.root), offset)
	default:
		return false
	}
	return true
}

func (v *Editor) insert(s string) {
	offset := v.CaretOffset()
	runes := []rune(v.text)
	offset, _ = ClampOffset(offset, len(runes))
	text := string(runes[:offset]) + s + string(runes[offset:])
	v.apply(text, offset+utf8.RuneCountInString(s))
}

// apply commits text as a new undoable state.
func (v *Editor) apply(text string, caret int) {
	before := EditState{Text: v.text, Caret: v.CaretOffset()}
	if v.editPending {
		before.Caret = v.editCaret
	}
	if err := v.commit(text, caret); err != nil {
		v.lastErr = err
		return
	}
	v.lastErr = nil
	if v.text != before.Text {
		v.history.Record(before)
	}
}

// commit renders text and, only if that succeeds, installs it with the caret at offset.
func (v *Editor) commit(text string, offset int) error {
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	text, offset = normalizeLineEndings(text, offset)
	text, offset = CollapseCommentMarkersAt(text, offset)

	markup := v.highlighter.Highlight(text, v.names.Snapshot())
	root, err := ParseMarkup(markup)
	if err != nil {
		return err
	}

	v.text = text
	v.markup = markup
	v.root = root
	v.editPending = false
	offset, _ = ClampOffset(offset, utf8.RuneCountInString(text))
	v.caret = CaretAt(root, offset)
	return nil
}

// SetText replaces the model, puts the caret at the end and clears undo history.
func (v *Editor) SetText(text string) error {
	if err := v.commit(text, utf8.RuneCountInString(text)); err != nil {
		return err
	}
	v.history.Clear()
	return nil
}

// Refresh re-renders the current text, for example after the known names changed.
func (v *Editor) Refresh() error {
	return v.commit(v.text, v.CaretOffset())
}

// SetCaret moves the caret to offset. Out-of-range offsets are clamped and reported.
func (v *Editor) SetCaret(offset int) error {
	clamped, err := ClampOffset(offset, utf8.RuneCountInString(v.text))
	v.caret = CaretAt(v.root, clamped)
	return err
}

// MoveCaret moves the caret by delta runes, stopping at either end.
func (v *Editor) MoveCaret(delta int) {
	_ = v.SetCaret(v.CaretOffset() + delta)
}

// Undo restores the previous text. It returns false when there is nothing to undo.
func (v *Editor) Undo() bool {
	state, ok := v.history.Undo(EditState{Text: v.text, Caret: v.CaretOffset()})
	if !ok {
		return false
	}
	v.lastErr = v.commit(state.Text, state.Caret)
	return true
}

// Redo re-applies an undone edit.
func (v *Editor) Redo() bool {
	state, ok := v.history.Redo(EditState{Text: v.text, Caret: v.CaretOffset()})
	if !ok {
		return false
	}
	v.lastErr = v.commit(state.Text, state.Caret)
	return true
}

// CanUndo reports whether Undo would do anything.
func (v *Editor) CanUndo() bool { return v.history.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (v *Editor) CanRedo() bool { return v.history.CanRedo() }

// LineBounds returns the rune offsets of the start and end of the line holding offset.
func (v *Editor) LineBounds(offset int) (start, end int) {
	runes := []rune(v.text)
	offset, _ = ClampOffset(offset, len(runes))
	start = offset
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	end = offset
	for end < len(runes) && runes[end] != '\n' {
		end++
	}
	return start, end
}

// normalizeLineEndings converts CRLF and CR to LF and drops NUL, which the markup
// parser would otherwise rewrite, and keeps a rune offset pointing at the same text.
func normalizeLineEndings(text string, offset int) (string, int) {
	if !strings.ContainsAny(text, "\r\x00") {
		return text, offset
	}
	var b strings.Builder
	b.Grow(len(text))
	newOffset := offset
	pos := 0
	for i, r := range text {
		switch {
		case r == 0:
			if pos < offset {
				newOffset--
			}
		case r == '\r' && i+1 < len(text) && text[i+1] == '\n':
			if pos < offset {
				newOffset--
			}
		case r == '\r':
			b.WriteByte('\n')
		default:
			b.WriteRune(r)
		}
		pos++
	}
	return b.String(), newOffset
}
