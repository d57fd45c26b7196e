package tview

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	rp "github.com/boolean-maybe/richprompt/richprompt"
	"github.com/boolean-maybe/richprompt/util"
)

// cell is one drawn rune of the rendered tree.
type cell struct {
	r      rune
	col    int
	width  int
	style  tcell.Style
	caret  rp.Caret
	offset int
}

// row is one visual line. end is the offset just after its last rune; hard rows
// end at a newline or the end of the text, the others wrap.
type row struct {
	cells []cell
	end   int
	hard  bool
}

func (r row) span() int {
	if len(r.cells) == 0 {
		return 0
	}
	last := r.cells[len(r.cells)-1]
	return last.col + last.width
}

// layout places the leaves of a rendered tree on a grid of the given width.
type layout struct {
	width int
	rows  []row
}

func buildLayout(root *html.Node, width int, base tcell.Style) *layout {
	if width < 1 {
		width = 1
	}
	l := &layout{width: width}
	cur := row{}
	offset := 0

	for _, leaf := range rp.TextLeaves(root) {
		style := util.CSSToStyle(rp.StyleOf(leaf), base)
		idx := 0
		for _, r := range leaf.Data {
			if r == '\n' {
				cur.end, cur.hard = offset, true
				l.rows = append(l.rows, cur)
				cur = row{}
			} else {
				w := runewidth.RuneWidth(r)
				if w < 1 {
					w = 1
				}
				col := cur.span()
				if col > 0 && col+w > width {
					cur.end = offset
					l.rows = append(l.rows, cur)
					cur, col = row{}, 0
				}
				cur.cells = append(cur.cells, cell{
					r:      r,
					col:    col,
					width:  w,
					style:  style,
					caret:  rp.Caret{Leaf: leaf, Index: idx},
					offset: offset,
				})
			}
			idx++
			offset++
		}
	}
	cur.end, cur.hard = offset, true
	l.rows = append(l.rows, cur)
	return l
}

// hit returns the cell covering col in row ri.
func (l *layout) hit(ri, col int) (cell, bool) {
	if ri < 0 || ri >= len(l.rows) {
		return cell{}, false
	}
	for _, c := range l.rows[ri].cells {
		if col >= c.col && col < c.col+c.width {
			return c, true
		}
	}
	return cell{}, false
}

// locate returns the row and column where the caret for offset is drawn.
// An offset at a wrap point is shown at the start of the following row.
func (l *layout) locate(offset int) (ri, col int) {
	for i, r := range l.rows {
		for _, c := range r.cells {
			if c.offset == offset {
				return i, c.col
			}
		}
		if r.hard && r.end == offset {
			return i, r.span()
		}
	}
	last := len(l.rows) - 1
	return last, l.rows[last].span()
}

// nearest returns the offset closest to column col of row ri, for clicks and
// vertical caret movement.
func (l *layout) nearest(ri, col int) int {
	ri = max(0, min(ri, len(l.rows)-1))
	r := l.rows[ri]
	for _, c := range r.cells {
		if col < c.col+c.width {
			return c.offset
		}
	}
	if r.hard || len(r.cells) == 0 {
		return r.end
	}
	return r.cells[len(r.cells)-1].offset
}
