package tview

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	rp "github.com/boolean-maybe/richprompt/richprompt"
)

const modifierMask = tcell.ModCtrl | tcell.ModAlt | tcell.ModShift | tcell.ModMeta

// InputHandler returns the input handler for this component.
func (v *PromptView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return v.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		ed := v.editor
		mods := event.Modifiers()

		switch key := event.Key(); key {
		case tcell.KeyTab:
			v.edit(rp.Event{Kind: rp.EventTab})
		case tcell.KeyEnter, tcell.KeyCtrlJ:
			// many terminals send Ctrl+Enter as Ctrl+J
			ev := rp.Event{Kind: rp.EventEnter, Modifier: key == tcell.KeyCtrlJ || mods&modifierMask != 0}
			if !v.edit(ev) && v.onSubmit != nil {
				v.onSubmit(v)
			}
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if ed.DeleteBackward() {
				v.edit(rp.Event{Kind: rp.EventInput})
			}
		case tcell.KeyDelete:
			if ed.DeleteForward() {
				v.edit(rp.Event{Kind: rp.EventInput})
			}
		case tcell.KeyCtrlZ:
			if ed.Undo() {
				v.afterEdit()
			}
		case tcell.KeyCtrlY:
			if ed.Redo() {
				v.afterEdit()
			}
		case tcell.KeyLeft:
			ed.MoveCaret(-1)
			v.caretMoved()
		case tcell.KeyRight:
			ed.MoveCaret(1)
			v.caretMoved()
		case tcell.KeyUp:
			v.moveRows(-1)
		case tcell.KeyDown:
			v.moveRows(1)
		case tcell.KeyPgUp:
			v.moveRows(-v.pageRows())
		case tcell.KeyPgDn:
			v.moveRows(v.pageRows())
		case tcell.KeyHome:
			start, _ := ed.LineBounds(ed.CaretOffset())
			_ = ed.SetCaret(start)
			v.caretMoved()
		case tcell.KeyEnd:
			_, end := ed.LineBounds(ed.CaretOffset())
			_ = ed.SetCaret(end)
			v.caretMoved()
		case tcell.KeyRune:
			r := event.Rune()
			if mods&tcell.ModAlt != 0 {
				v.zoomKey(r)
				return
			}
			ed.InsertText(string(r))
			v.edit(rp.Event{Kind: rp.EventInput})
		}
	})
}

// PasteHandler inserts pasted text as one edit.
func (v *PromptView) PasteHandler() func(pastedText string, setFocus func(p tview.Primitive)) {
	return v.WrapPasteHandler(func(pastedText string, setFocus func(p tview.Primitive)) {
		if pastedText == "" {
			return
		}
		v.editor.InsertText(pastedText)
		v.edit(rp.Event{Kind: rp.EventInput})
	})
}

// MouseHandler returns the mouse handler for this component.
func (v *PromptView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return v.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		x, y := event.Position()
		if !v.InRect(x, y) {
			v.Leave()
			return false, nil
		}

		switch action {
		case tview.MouseMove:
			v.hover(x, y)
			return true, nil
		case tview.MouseLeftClick:
			setFocus(v)
			v.clickAt(x, y)
			return true, nil
		case tview.MouseScrollUp, tview.MouseScrollDown:
			step := 1
			if action == tview.MouseScrollUp {
				step = -1
			}
			if event.Modifiers()&tcell.ModCtrl != 0 {
				v.zoom.Adjust(-step)
				v.zoomed()
			} else {
				v.moveRows(step)
			}
			return true, nil
		}
		return false, nil
	})
}

// edit runs one edit cycle and reports whether the editor took the event.
func (v *PromptView) edit(ev rp.Event) bool {
	if !v.editor.OnUserEdit(ev) {
		return false
	}
	v.afterEdit()
	return true
}

func (v *PromptView) afterEdit() {
	v.scheduler.Leave()
	v.changed()
}

func (v *PromptView) caretMoved() {
	if v.onChanged != nil {
		v.onChanged(v)
	}
}

func (v *PromptView) zoomed() {
	v.grid = nil
	v.changed()
}

func (v *PromptView) zoomKey(r rune) {
	switch r {
	case '+', '=':
		v.zoom.Adjust(1)
	case '-', '_':
		v.zoom.Adjust(-1)
	case '0':
		v.zoom.Reset()
	default:
		return
	}
	v.zoomed()
}

func (v *PromptView) hover(x, y int) {
	target, ok := v.resolver.Resolve(v.editor.Root(), v, x, y, v.editor.Names())
	v.scheduler.Update(target, ok, x, y)
}

func (v *PromptView) clickAt(x, y int) {
	ix, iy, _, _ := v.GetInnerRect()
	ri := v.scroll + (y-iy)/v.spacing()
	_ = v.editor.SetCaret(v.layout().nearest(ri, x-ix))
	v.caretMoved()
}

// moveRows moves the caret by n visual rows, keeping its column.
func (v *PromptView) moveRows(n int) {
	grid := v.layout()
	ri, col := grid.locate(v.editor.CaretOffset())
	target := max(0, min(ri+n, len(grid.rows)-1))
	if target == ri {
		return
	}
	_ = v.editor.SetCaret(grid.nearest(target, col))
	v.caretMoved()
}

func (v *PromptView) pageRows() int {
	_, _, _, height := v.GetInnerRect()
	return max(height/v.spacing()-1, 1)
}
