package richprompt

import (
	"html"
	"strings"
)

// markupEscaper replaces the five reserved characters. strings.Replacer scans the
// input once, so "&" can never be escaped twice.
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// residualEscaper only touches the characters that would otherwise start markup.
var residualEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape converts raw text to markup-safe text.
func Escape(s string) string {
	return markupEscaper.Replace(s)
}

func unescape(s string) string {
	return html.UnescapeString(s)
}
