package expand

import (
	"regexp"
	"strings"
	"unicode"
)

type fixup struct {
	from, to string
	// emptyTag fix-ups only run with Options.RemoveEmptyTags.
	emptyTag bool
}

// Longest first, so ",  " is fixed before " ,".
var fixups = []fixup{
	{from: ",  ", to: ", "},
	{from: ".  ", to: ". "},
	{from: " ,", to: ","},
	{from: " .", to: "."},
	{from: ".,", to: ".", emptyTag: true},
	{from: ",.", to: ",", emptyTag: true},
	{from: ",,", to: ",", emptyTag: true},
	{from: "..", to: ".", emptyTag: true},
}

var separatorRun = regexp.MustCompile(`([.,])\s*[.,]`)

// Cleanup turns an expanded prompt into its final form: comments removed, lines
// trimmed and joined, stray separators fixed. Text inside <...> tags is left alone
// by the separator fix-ups.
func Cleanup(prompt string, opts Options) string {
	var lines []string
	for _, line := range splitLines(prompt) {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if opts.TrimWhitespace {
			line = squeezeSpaces(strings.TrimSpace(line))
		}
		if line != "" {
			lines = append(lines, line+opts.Suffix)
		}
	}
	sep := "\n"
	if opts.SingleLine {
		sep = " "
	}
	prompt = strings.Join(lines, sep)

	for changed := true; changed; {
		changed = false
		for _, f := range fixups {
			if f.emptyTag && !opts.RemoveEmptyTags {
				continue
			}
			if next, ok := replaceOutsideTags(prompt, f.from, f.to); ok {
				prompt = next
				changed = true
			}
		}
	}

	if opts.RemoveEmptyTags {
		prompt = removeEmptyTags(prompt)
	}
	return trimSeparators(prompt)
}

func squeezeSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// replaceOutsideTags replaces every occurrence of from that does not start inside
// a closed <...> tag. ok reports whether anything was replaced.
func replaceOutsideTags(s, from, to string) (string, bool) {
	var b strings.Builder
	last := 0
	replaced := false
	for i := 0; i+len(from) <= len(s); {
		j := strings.Index(s[i:], from)
		if j < 0 {
			break
		}
		at := i + j
		if insideTag(s, at) {
			i = at + len(from)
			continue
		}
		b.WriteString(s[last:at])
		b.WriteString(to)
		last = at + len(from)
		i = last
		replaced = true
	}
	if !replaced {
		return s, false
	}
	b.WriteString(s[last:])
	return b.String(), true
}

func insideTag(s string, at int) bool {
	open := strings.LastIndexByte(s[:at], '<')
	if open < 0 {
		return false
	}
	end := strings.IndexByte(s[open:], '>')
	return end >= 0 && open+end > at
}

// removeEmptyTags rewrites every separator as ", " or ". " and collapses runs of
// separators, dropping the empty entries between them. A '.' directly followed by
// a digit is a decimal point and stays as is.
func removeEmptyTags(s string) string {
	for _, sep := range []string{", ", " ,", " .", ". "} {
		s = strings.ReplaceAll(s, sep, strings.TrimSpace(sep))
	}
	s = strings.ReplaceAll(s, ",", ", ")
	s = spaceAfterPeriods(s)

	for {
		next := separatorRun.ReplaceAllString(s, "$1 ")
		if len(next) == len(s) {
			break
		}
		s = next
	}
	s = strings.ReplaceAll(s, ",,", ",")
	return strings.ReplaceAll(s, "..", ".")
}

func spaceAfterPeriods(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if s[i] == '.' && (i+1 == len(s) || !isDigit(s[i+1])) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// trimSeparators drops leading commas, periods and whitespace and trailing
// commas and whitespace. Whitespace includes newlines exposed by a removed
// separator.
func trimSeparators(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return r == ',' || r == '.' || unicode.IsSpace(r)
	})
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
