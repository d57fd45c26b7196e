package richprompt

import (
	"fmt"
	"strings"
)

// Placeholders are spelled with private-use runes so that no highlighting stage,
// all of which match ASCII syntax, can ever match inside one.
const (
	placeholderStart = '\uE000'
	placeholderEnd   = '\uE001'
	placeholderDigit = '\uE010' // U+E010..U+E01F encode one hex digit each
)

// IsMarkerRune reports whether r belongs to the placeholder alphabet.
func IsMarkerRune(r rune) bool {
	return r >= placeholderStart && r <= placeholderDigit+15
}

type protectedFragment struct {
	raw      string
	fragment string
}

// Protector keeps finalized markup fragments out of reach of later stages.
// A Protector lives for a single Highlight call.
type Protector struct {
	fragments []protectedFragment
}

// NewProtector creates an empty protector.
func NewProtector() *Protector {
	return &Protector{}
}

// Protect registers fragment and returns the placeholder that stands for it.
func (p *Protector) Protect(fragment string) string {
	return p.protectSpan("", fragment)
}

// protectSpan is Protect that also remembers the source text the fragment renders,
// so Reveal can recover it for name lookups.
func (p *Protector) protectSpan(raw, fragment string) string {
	idx := len(p.fragments)
	p.fragments = append(p.fragments, protectedFragment{raw: raw, fragment: fragment})
	return placeholder(idx)
}

// Len returns the number of registered fragments.
func (p *Protector) Len() int { return len(p.fragments) }

// RestoreAll replaces every placeholder in text with its fragment. Fragments that
// themselves contain placeholders are expanded as well, so each fragment appears
// exactly once in the result.
func (p *Protector) RestoreAll(text string) string {
	return p.substitute(text, func(f protectedFragment) string { return f.fragment })
}

// Reveal replaces every placeholder in text with the source text it was built from.
func (p *Protector) Reveal(text string) string {
	return p.substitute(text, func(f protectedFragment) string { return f.raw })
}

func (p *Protector) substitute(text string, pick func(protectedFragment) string) string {
	if !strings.ContainsRune(text, placeholderStart) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for {
		start := strings.IndexRune(text, placeholderStart)
		if start < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:start])

		idx, width, ok := parsePlaceholder(text[start:])
		if !ok || idx >= len(p.fragments) {
			// not one of ours; keep the rune and move on
			b.WriteRune(placeholderStart)
			text = text[start+len(string(placeholderStart)):]
			continue
		}
		b.WriteString(p.substitute(pick(p.fragments[idx]), pick))
		text = text[start+width:]
	}
}

func placeholder(idx int) string {
	hex := fmt.Sprintf("%x", idx)
	var b strings.Builder
	b.WriteRune(placeholderStart)
	for _, c := range hex {
		b.WriteRune(placeholderDigit + hexValue(c))
	}
	b.WriteRune(placeholderEnd)
	return b.String()
}

// parsePlaceholder decodes a placeholder at the start of s.
// Returns the fragment index and the byte width of the placeholder.
func parsePlaceholder(s string) (int, int, bool) {
	runes := 0
	idx := 0
	width := 0
	for i, r := range s {
		switch {
		case i == 0:
			if r != placeholderStart {
				return 0, 0, false
			}
		case r >= placeholderDigit && r <= placeholderDigit+15:
			idx = idx*16 + int(r-placeholderDigit)
			runes++
		case r == placeholderEnd:
			if runes == 0 {
				return 0, 0, false
			}
			width = i + len(string(placeholderEnd))
			return idx, width, true
		default:
			return 0, 0, false
		}
	}
	return 0, 0, false
}

func hexValue(c rune) rune {
	if c >= 'a' {
		return c - 'a' + 10
	}
	return c - '0'
}
