package richprompt

import (
	"fmt"
	"regexp"
	"strings"
)

const numberPattern = `[0-9]+(?:\.[0-9]+)?`

var (
	weightPattern      = regexp.MustCompile(`:` + numberPattern)
	comboWeightPattern = regexp.MustCompile(numberPattern + `::`)
)

// stage is one named transform of the working buffer. Stages run strictly in order;
// anything a stage finalizes goes through the protector so later stages cannot see it.
type stage struct {
	name string
	run  func(*pass)
}

var stages = []stage{
	{"markers", (*pass).protectMarkers},
	{"comments", (*pass).comments},
	{"wildcards", (*pass).wildcards},
	{"tags", (*pass).tags},
	{"escape", (*pass).escapeResidual},
	{"weights", (*pass).bareWeights},
	{"parens", (*pass).parens},
	{"combo-weights", (*pass).comboWeights},
	{"combo", (*pass).combo},
	{"punctuation", (*pass).punctuation},
}

// pass is the state of a single Highlight call.
type pass struct {
	work      string
	protector *Protector
	names     *Names
	palette   Palette
}

// Highlighter turns prompt text into styled markup.
// It is safe for concurrent use; every call works on its own buffers.
type Highlighter struct {
	palette Palette
}

// NewHighlighter creates a highlighter. Empty palette entries fall back to the defaults.
func NewHighlighter(palette Palette) *Highlighter {
	return &Highlighter{palette: palette.Merge(DefaultPalette())}
}

// Palette returns the palette in use.
func (h *Highlighter) Palette() Palette {
	return h.palette
}

// Highlight renders text as markup. Stripping the tags and decoding entities in the
// result gives back text unchanged, for every input.
func (h *Highlighter) Highlight(text string, names *Names) string {
	p := &pass{
		work:      text,
		protector: NewProtector(),
		names:     names,
		palette:   h.palette,
	}
	for _, s := range stages {
		s.run(p)
	}
	return p.protector.RestoreAll(p.work)
}

// StageNames lists the pipeline stages in execution order, restoration excluded.
func StageNames() []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = s.name
	}
	return out
}

// protectMarkers hides any placeholder alphabet already present in the input behind
// numeric character references, so it cannot be mistaken for a placeholder.
func (p *pass) protectMarkers() {
	if !strings.ContainsFunc(p.work, IsMarkerRune) {
		return
	}
	var b strings.Builder
	for _, r := range p.work {
		if IsMarkerRune(r) {
			b.WriteString(p.protector.protectSpan(string(r), fmt.Sprintf("&#x%X;", r)))
			continue
		}
		b.WriteRune(r)
	}
	p.work = b.String()
}

func (p *pass) comments() {
	var b strings.Builder
	work := p.work
	for {
		end := strings.IndexAny(work, "\n\r")
		if end < 0 {
			b.WriteString(p.commentLine(work))
			break
		}
		b.WriteString(p.commentLine(work[:end]))
		b.WriteByte(work[end])
		work = work[end+1:]
	}
	p.work = b.String()
}

func (p *pass) commentLine(line string) string {
	start, run, ok := commentMarker(line)
	if !ok {
		return line
	}
	body := line[start:]
	fragment := span(p.palette.Style(commentKind(run)), Escape(body))
	return line[:start] + p.protector.protectSpan(p.protector.Reveal(body), fragment)
}

// commentMarker finds the first '#' of a line that does not directly follow '<'
// and returns its byte index and the length of the '#' run starting there.
func commentMarker(line string) (start, run int, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' || (i > 0 && line[i-1] == '<') {
			continue
		}
		j := i
		for j < len(line) && line[j] == '#' {
			j++
		}
		return i, j - i, true
	}
	return 0, 0, false
}

func commentKind(run int) TokenKind {
	switch {
	case run >= 3:
		return CommentLarge
	case run == 2:
		return CommentMedium
	default:
		return CommentSmall
	}
}

func (p *pass) wildcards() {
	p.work = replaceSubmatches(wildcardPattern, p.work, func(work string, m []int) string {
		match := work[m[0]:m[1]]
		style := p.palette.Wildcard
		if _, ok := p.names.Wildcard(p.protector.Reveal(work[m[2]:m[3]])); !ok {
			style = p.palette.Unresolved
		}
		return p.protector.protectSpan(p.protector.Reveal(match), span(style, Escape(match)))
	})
}

func (p *pass) tags() {
	p.work = replaceSubmatches(tagPattern, p.work, func(work string, m []int) string {
		match := work[m[0]:m[1]]
		style := p.palette.TagStyle(work[m[2]:m[3]])
		if _, ok := p.names.Tag(p.protector.Reveal(work[m[4]:m[5]])); !ok {
			style = p.palette.Unresolved
		}

		inner := Escape(match[1 : len(match)-1])
		inner = weightPattern.ReplaceAllStringFunc(inner, func(w string) string {
			return span(p.palette.Weight, w)
		})
		return p.protector.protectSpan(p.protector.Reveal(match), span(style, "&lt;"+inner+"&gt;"))
	})
}

func (p *pass) escapeResidual() {
	p.work = residualEscaper.Replace(p.work)
}

// bareWeights styles ":<number>" only when a ')' appears anywhere after it.
func (p *pass) bareWeights() {
	lastParen := strings.LastIndexByte(p.work, ')')
	if lastParen < 0 {
		return
	}
	p.work = replaceSubmatches(weightPattern, p.work, func(work string, m []int) string {
		match := work[m[0]:m[1]]
		if m[1] > lastParen {
			return match
		}
		return p.wrap(p.palette.Weight, match)
	})
}

func (p *pass) parens() {
	p.work = p.wrapEach(p.work, "()", p.palette.Paren)
}

func (p *pass) comboWeights() {
	p.work = comboWeightPattern.ReplaceAllStringFunc(p.work, func(match string) string {
		return p.wrap(p.palette.Weight, match)
	})
}

func (p *pass) combo() {
	p.work = p.wrapEach(p.work, "{}|", p.palette.Combo)
}

// punctuation styles every comma, and every period not followed by a digit or
// another period.
func (p *pass) punctuation() {
	work := p.work
	var b strings.Builder
	b.Grow(len(work))
	for i := 0; i < len(work); i++ {
		c := work[i]
		switch {
		case c == ',':
			b.WriteString(p.wrap(p.palette.Punctuation, ","))
		case c == '.' && !(i+1 < len(work) && (isDigit(work[i+1]) || work[i+1] == '.')):
			b.WriteString(p.wrap(p.palette.Punctuation, "."))
		default:
			b.WriteByte(c)
		}
	}
	p.work = b.String()
}

// wrap styles already-escaped text and protects the result.
func (p *pass) wrap(style, text string) string {
	return p.protector.protectSpan(text, span(style, text))
}

func (p *pass) wrapEach(work, chars, style string) string {
	if !strings.ContainsAny(work, chars) {
		return work
	}
	var b strings.Builder
	b.Grow(len(work))
	for _, r := range work {
		if strings.ContainsRune(chars, r) {
			b.WriteString(p.wrap(style, string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// replaceSubmatches is ReplaceAllStringFunc with access to submatch indices.
func replaceSubmatches(re *regexp.Regexp, s string, fn func(s string, m []int) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		b.WriteString(fn(s, m))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
