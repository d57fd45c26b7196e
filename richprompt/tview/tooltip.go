package tview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/boolean-maybe/richprompt/internal/logger"
	rp "github.com/boolean-maybe/richprompt/richprompt"
)

const (
	tooltipWidth    = 44
	tooltipMaxLines = 10
	suggestLimit    = 3
)

// tooltip is the PreviewSink of a PromptView. The scheduler calls it from timer
// goroutines; every state change is handed to the view's queue so it happens on
// the UI goroutine.
type tooltip struct {
	view *PromptView

	mu       sync.Mutex
	provider rp.PreviewProvider
	timeout  time.Duration

	// UI goroutine only
	visible bool
	target  rp.HoverTarget
	x, y    int
	lines   []string
	gen     uint64
}

func (t *tooltip) Show(target rp.HoverTarget, x, y int) {
	t.view.queue(func() {
		t.gen++
		gen := t.gen
		t.visible, t.target, t.x, t.y = true, target, x, y
		t.lines = t.describe(target, nil, nil)

		t.mu.Lock()
		provider, timeout := t.provider, t.timeout
		t.mu.Unlock()
		if provider == nil {
			return
		}
		t.lines = append(t.lines, "loading…")
		go t.fetch(provider, timeout, target, gen)
	})
}

func (t *tooltip) Move(x, y int) {
	t.view.queue(func() {
		t.x, t.y = x, y
	})
}

func (t *tooltip) Hide() {
	t.view.queue(func() {
		t.gen++
		t.visible = false
		t.lines = nil
	})
}

func (t *tooltip) fetch(provider rp.PreviewProvider, timeout time.Duration, target rp.HoverTarget, gen uint64) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	preview, err := provider.Preview(ctx, target)
	if err != nil && !errors.Is(err, rp.ErrNoPreview) {
		logger.L(ctx).Debug("preview failed",
			zap.String("kind", target.Kind.String()),
			zap.String("identifier", target.Identifier),
			zap.Error(err))
	}
	t.view.queue(func() {
		if gen != t.gen || !t.visible {
			return
		}
		t.lines = t.describe(target, &preview, err)
	})
}

// describe builds the tooltip text. preview is nil while nothing was fetched.
func (t *tooltip) describe(target rp.HoverTarget, preview *rp.Preview, err error) []string {
	var lines []string
	switch target.Kind {
	case rp.TargetWildcard:
		lines = append(lines, "__"+target.Identifier+"__")
	case rp.TargetLoraTag:
		lines = append(lines, target.TagKind+": "+target.Identifier)
		if !target.Resolved {
			lines = append(lines, "unknown name")
			names := t.view.editor.Names()
			if hints := rp.Suggest(target.Identifier, names.TagNames(), suggestLimit); len(hints) > 0 {
				lines = append(lines, "did you mean "+strings.Join(hints, ", ")+"?")
			}
		}
	}

	switch {
	case preview == nil:
	case errors.Is(err, rp.ErrNoPreview):
		lines = append(lines, "no preview")
	case err != nil:
		lines = append(lines, "preview unavailable")
	default:
		if preview.URL != "" {
			kind := "image"
			if preview.Video {
				kind = "video"
			}
			lines = append(lines, kind+": "+preview.URL)
		}
		for _, l := range preview.Lines {
			lines = append(lines, "  "+l)
		}
	}
	return lines
}

// draw paints the tooltip next to the pointer, kept inside the given rectangle.
func (t *tooltip) draw(screen tcell.Screen, zoom *rp.Zoom, rx, ry, rw, rh int) {
	if !t.visible || len(t.lines) == 0 || rw < 4 || rh < 3 {
		return
	}

	width := min(zoom.Scale(tooltipWidth), rw)
	lines := t.lines
	if limit := zoom.Scale(tooltipMaxLines); len(lines) > limit {
		lines = lines[:limit]
	}
	height := min(len(lines)+2, rh)

	x, y := t.x+2, t.y+1
	if x+width > rx+rw {
		x = rx + rw - width
	}
	if y+height > ry+rh {
		y = t.y - height
	}
	x, y = max(x, rx), max(y, ry)

	border := tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorBlack)
	body := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			r, style := ' ', body
			switch {
			case row == 0 || row == height-1:
				r, style = '─', border
				if col == 0 || col == width-1 {
					r = cornerRune(row == 0, col == 0)
				}
			case col == 0 || col == width-1:
				r, style = '│', border
			}
			screen.SetContent(x+col, y+row, r, nil, style)
		}
	}
	for i, line := range lines {
		if i+1 >= height-1 {
			break
		}
		line = runewidth.Truncate(line, width-2, "…")
		col := x + 1
		for _, r := range line {
			screen.SetContent(col, y+1+i, r, nil, body)
			col += max(runewidth.RuneWidth(r), 1)
		}
	}
}

func cornerRune(top, left bool) rune {
	switch {
	case top && left:
		return '┌'
	case top:
		return '┐'
	case left:
		return '└'
	default:
		return '┘'
	}
}
