package richprompt

import (
	"strings"
	"unicode/utf8"
)

// CollapseCommentMarkers keeps the leading '#' run of each line's comment and
// collapses every later run of two or more '#' on that line into one, so typing
// extra markers inside a comment body cannot change the comment's size.
func CollapseCommentMarkers(text string) string {
	out, _ := CollapseCommentMarkersAt(text, 0)
	return out
}

// CollapseCommentMarkersAt is CollapseCommentMarkers that also moves a rune caret
// left by the number of runes removed before it.
func CollapseCommentMarkersAt(text string, caret int) (string, int) {
	if !strings.Contains(text, "##") {
		return text, caret
	}

	var b strings.Builder
	b.Grow(len(text))
	pos := 0 // rune offset of the next byte in the input
	newCaret := caret

	for len(text) > 0 {
		end := strings.IndexAny(text, "\n\r")
		line := text
		if end >= 0 {
			line = text[:end+1]
		}
		text = text[len(line):]

		start, run, ok := firstMarkerRun(line)
		if !ok {
			b.WriteString(line)
			pos += utf8.RuneCountInString(line)
			continue
		}

		head := line[:start+run]
		b.WriteString(head)
		pos += utf8.RuneCountInString(head)

		rest := line[start+run:]
		for i := 0; i < len(rest); {
			if rest[i] != '#' {
				if utf8.RuneStart(rest[i]) {
					pos++
				}
				b.WriteByte(rest[i])
				i++
				continue
			}
			j := i
			for j < len(rest) && rest[j] == '#' {
				j++
			}
			n := j - i
			b.WriteByte('#')
			if n > 1 {
				newCaret -= clampInt(caret-(pos+1), 0, n-1)
			}
			pos += n
			i = j
		}
	}
	return b.String(), newCaret
}

// firstMarkerRun returns the byte index of the first '#' of a line and the length
// of the run starting there. Unlike the highlighter, it does not skip a '#'
// directly after '<'.
func firstMarkerRun(line string) (start, run int, ok bool) {
	start = strings.IndexByte(line, '#')
	if start < 0 {
		return 0, 0, false
	}
	end := start
	for end < len(line) && line[end] == '#' {
		end++
	}
	return start, end - start, true
}

// MatchingPair finds the bracket partner for a '(' ')' '{' or '}' at the caret, or
// immediately before it. It returns the rune offsets of the opening and closing
// bracket. Unbalanced brackets have no partner.
func MatchingPair(text string, caret int) (openAt, closeAt int, ok bool) {
	runes := []rune(text)
	idx := -1
	switch {
	case caret >= 0 && caret < len(runes) && isBracket(runes[caret]):
		idx = caret
	case caret > 0 && caret <= len(runes) && isBracket(runes[caret-1]):
		idx = caret - 1
	default:
		return 0, 0, false
	}

	var opener, closer rune
	switch runes[idx] {
	case '(', ')':
		opener, closer = '(', ')'
	default:
		opener, closer = '{', '}'
	}

	depth := 0
	if runes[idx] == opener {
		for i := idx; i < len(runes); i++ {
			switch runes[i] {
			case opener:
				depth++
			case closer:
				depth--
				if depth == 0 {
					return idx, i, true
				}
			}
		}
		return 0, 0, false
	}
	for i := idx; i >= 0; i-- {
		switch runes[i] {
		case closer:
			depth++
		case opener:
			depth--
			if depth == 0 {
				return i, idx, true
			}
		}
	}
	return 0, 0, false
}

func isBracket(r rune) bool {
	return r == '(' || r == ')' || r == '{' || r == '}'
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
