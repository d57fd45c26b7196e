package tview

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/boolean-maybe/richprompt/util"
)

//go:embed help.md
var helpMarkdown string

// Section is a heading of the help page and the rendered row it starts on.
type Section struct {
	Title string
	Level int
	Row   int
}

// HelpView shows the key and syntax reference.
type HelpView struct {
	*tview.TextView

	sections []Section
	current  int
}

// NewHelpView renders the help page for the given wrap width (0 means 80).
func NewHelpView(width int) *HelpView {
	if width <= 0 {
		width = 80
	}
	tv := tview.NewTextView()
	tv.SetDynamicColors(true)
	tv.SetWrap(false)
	tv.SetBorder(true)
	tv.SetTitle(" help: n/p section, Esc close ")

	h := &HelpView{TextView: tv}
	rendered := renderHelp(helpMarkdown, width)
	tv.SetText(util.ANSIToTview(rendered))
	h.sections = locateSections(headings(helpMarkdown), util.StripANSI(rendered))
	return h
}

// Sections returns the headings of the page.
func (h *HelpView) Sections() []Section {
	return h.sections
}

// InputHandler adds section jumps to the text view's scrolling.
func (h *HelpView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	base := h.TextView.InputHandler()
	return h.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		if event.Key() == tcell.KeyRune && len(h.sections) > 0 {
			switch event.Rune() {
			case 'n':
				h.jump(h.current + 1)
				return
			case 'p':
				h.jump(h.current - 1)
				return
			}
		}
		base(event, setFocus)
	})
}

func (h *HelpView) jump(i int) {
	h.current = max(0, min(i, len(h.sections)-1))
	h.ScrollTo(h.sections[h.current].Row, 0)
}

func renderHelp(markdown string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// headings lists the markdown headings in document order.
func headings(markdown string) []Section {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var out []Section
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n, ok := node.(*ast.Heading); ok {
			var title strings.Builder
			for child := n.FirstChild(); child != nil; child = child.NextSibling() {
				if t, ok := child.(*ast.Text); ok {
					title.Write(t.Segment.Value(source))
				}
			}
			out = append(out, Section{Title: title.String(), Level: n.Level})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

// locateSections finds the rendered row of each heading, searching forward so
// repeated titles map to successive rows.
func locateSections(sections []Section, plain string) []Section {
	lines := strings.Split(plain, "\n")
	row := 0
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		for i := row; i < len(lines); i++ {
			if strings.Contains(lines[i], s.Title) {
				s.Row, row = i, i+1
				out = append(out, s)
				break
			}
		}
	}
	return out
}
