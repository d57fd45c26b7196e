package tview

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	rp "github.com/boolean-maybe/richprompt/richprompt"
)

// PromptView is an editable prompt surface. It draws the editor's rendered tree,
// turns keys and mouse input into edits, and shows hover previews in a tooltip.
type PromptView struct {
	*tview.Box

	editor    *rp.Editor
	resolver  *rp.HoverResolver
	scheduler *rp.PreviewScheduler
	zoom      *rp.Zoom
	tip       *tooltip

	// layout cache; nil after every edit
	grid   *layout
	scroll int

	// queue runs f on the UI goroutine; defaults to calling f directly.
	queue func(f func())

	backgroundColor tcell.Color
	baseStyle       tcell.Style

	onSubmit  func(*PromptView)
	onChanged func(*PromptView)
}

// NewPromptView creates a view over editor.
func NewPromptView(editor *rp.Editor) *PromptView {
	box := tview.NewBox()
	box.SetBorder(false)

	v := &PromptView{
		Box:             box,
		editor:          editor,
		resolver:        rp.NewHoverResolver(),
		zoom:            rp.NewZoom(rp.DefaultZoomMin, rp.DefaultZoomMax),
		queue:           func(f func()) { f() },
		backgroundColor: tcell.ColorDefault,
		baseStyle:       tcell.StyleDefault,
	}
	v.tip = &tooltip{view: v}
	v.scheduler = rp.NewPreviewScheduler(rp.RealClock(), rp.DefaultPreviewDelay, v.tip)
	return v
}

// Editor exposes the underlying UI-agnostic editor.
func (v *PromptView) Editor() *rp.Editor { return v.editor }

// Zoom exposes the display scale.
func (v *PromptView) Zoom() *rp.Zoom { return v.zoom }

// SetQueue sets how work from other goroutines reaches the UI goroutine,
// typically Application.QueueUpdateDraw.
func (v *PromptView) SetQueue(queue func(f func())) *PromptView {
	if queue == nil {
		queue = func(f func()) { f() }
	}
	v.queue = queue
	return v
}

// SetPreviewProvider sets where tooltip content comes from. timeout bounds each
// fetch; zero means no limit.
func (v *PromptView) SetPreviewProvider(p rp.PreviewProvider, timeout time.Duration) *PromptView {
	v.tip.mu.Lock()
	v.tip.provider, v.tip.timeout = p, timeout
	v.tip.mu.Unlock()
	return v
}

// SetPreviewScheduling replaces the debounce clock and delay.
func (v *PromptView) SetPreviewScheduling(clock rp.Clock, delay time.Duration) *PromptView {
	v.scheduler.Leave()
	v.scheduler = rp.NewPreviewScheduler(clock, delay, v.tip)
	return v
}

// SetZoom replaces the display scale.
func (v *PromptView) SetZoom(z *rp.Zoom) *PromptView {
	if z != nil {
		v.zoom = z
		v.grid = nil
	}
	return v
}

// SetBackgroundColor sets the background color for empty space.
// Use tcell.ColorDefault to disable background filling (default behavior).
func (v *PromptView) SetBackgroundColor(color tcell.Color) *PromptView {
	v.backgroundColor = color
	v.baseStyle = tcell.StyleDefault
	if color != tcell.ColorDefault {
		v.baseStyle = v.baseStyle.Background(color)
	}
	v.grid = nil
	return v
}

// SetSubmitHandler sets the callback for Modifier+Enter.
func (v *PromptView) SetSubmitHandler(handler func(*PromptView)) *PromptView {
	v.onSubmit = handler
	return v
}

// SetChangedHandler sets a callback for text, caret and zoom changes.
func (v *PromptView) SetChangedHandler(handler func(*PromptView)) *PromptView {
	v.onChanged = handler
	return v
}

// SetText replaces the prompt.
func (v *PromptView) SetText(text string) *PromptView {
	_ = v.editor.SetText(text)
	v.changed()
	return v
}

// Refresh re-highlights after the known names changed.
func (v *PromptView) Refresh() {
	_ = v.editor.Refresh()
	v.changed()
}

// Leave tells the view the pointer left it.
func (v *PromptView) Leave() {
	v.scheduler.Leave()
}

// CaretFromPoint implements richprompt.PointLocator. Only cells holding text
// count; empty space has no caret.
func (v *PromptView) CaretFromPoint(x, y int) (rp.Caret, bool) {
	ri, col, ok := v.gridPoint(x, y)
	if !ok {
		return rp.Caret{}, false
	}
	c, ok := v.layout().hit(ri, col)
	if !ok {
		return rp.Caret{}, false
	}
	return c.caret, true
}

// spacing is the number of screen rows per text row.
func (v *PromptView) spacing() int {
	return v.zoom.Scale(1)
}

func (v *PromptView) layout() *layout {
	_, _, width, _ := v.GetInnerRect()
	if v.grid == nil || v.grid.width != max(width, 1) {
		v.grid = buildLayout(v.editor.Root(), width, v.baseStyle)
	}
	return v.grid
}

// gridPoint converts screen coordinates to a layout row and column.
func (v *PromptView) gridPoint(x, y int) (ri, col int, ok bool) {
	ix, iy, width, height := v.GetInnerRect()
	if x < ix || x >= ix+width || y < iy || y >= iy+height {
		return 0, 0, false
	}
	sp := v.spacing()
	if (y-iy)%sp != 0 {
		return 0, 0, false
	}
	return v.scroll + (y-iy)/sp, x - ix, true
}

func (v *PromptView) changed() {
	v.grid = nil
	if v.onChanged != nil {
		v.onChanged(v)
	}
}

// Draw renders the component.
func (v *PromptView) Draw(screen tcell.Screen) {
	v.DrawForSubclass(screen, v)
	x, y, width, height := v.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}

	if v.backgroundColor != tcell.ColorDefault {
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				screen.SetContent(x+col, y+row, ' ', nil, v.baseStyle)
			}
		}
	}

	grid := v.layout()
	sp := v.spacing()
	visible := max(height/sp, 1)

	caret := v.editor.CaretOffset()
	caretRow, caretCol := grid.locate(caret)
	v.scrollTo(caretRow, visible, len(grid.rows))

	pair := map[int]bool{}
	if open, closing, ok := rp.MatchingPair(v.editor.Text(), caret); ok {
		pair[open], pair[closing] = true, true
	}

	for i := 0; i < visible; i++ {
		ri := v.scroll + i
		if ri >= len(grid.rows) {
			break
		}
		sy := y + i*sp
		for _, c := range grid.rows[ri].cells {
			if c.col >= width {
				break
			}
			style := c.style
			if pair[c.offset] {
				style = style.Background(tcell.ColorDarkSlateGray).Bold(true)
			}
			screen.SetContent(x+c.col, sy, c.r, nil, style)
		}
	}

	if v.HasFocus() && caretRow >= v.scroll && caretRow < v.scroll+visible && caretCol < width {
		sx, sy := x+caretCol, y+(caretRow-v.scroll)*sp
		r, _, style, _ := screen.GetContent(sx, sy)
		screen.SetContent(sx, sy, r, nil, style.Reverse(true))
	}

	v.tip.draw(screen, v.zoom, x, y, width, height)
}

// scrollTo keeps row ri inside the visible window.
func (v *PromptView) scrollTo(ri, visible, total int) {
	if ri < v.scroll {
		v.scroll = ri
	}
	if ri >= v.scroll+visible {
		v.scroll = ri - visible + 1
	}
	v.scroll = max(0, min(v.scroll, max(total-visible, 0)))
}
