package richprompt

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// TokenKind classifies a span of prompt text.
type TokenKind int

const (
	PlainText TokenKind = iota
	CommentLarge
	CommentMedium
	CommentSmall
	Wildcard
	LoraTag
	WeightNumber
	Paren
	ComboBrace
	ComboBar
	Punctuation
)

func (k TokenKind) String() string {
	switch k {
	case CommentLarge:
		return "comment-large"
	case CommentMedium:
		return "comment-medium"
	case CommentSmall:
		return "comment-small"
	case Wildcard:
		return "wildcard"
	case LoraTag:
		return "lora-tag"
	case WeightNumber:
		return "weight"
	case Paren:
		return "paren"
	case ComboBrace:
		return "combo-brace"
	case ComboBar:
		return "combo-bar"
	case Punctuation:
		return "punctuation"
	default:
		return "text"
	}
}

// Token is a classified substring of prompt text.
// Start and End are rune offsets. Text is the identifier for wildcards and tags,
// Tag the lower-cased tag keyword.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
	Text  string
	Tag   string
}

// Inline tag kinds. Each has its own base colour in the palette.
const (
	TagKindLora     = "lora"
	TagKindLyco     = "lyco"
	TagKindHypernet = "hypernet"
)

var (
	// wildcardPattern captures the identifier between double underscores, never crossing a line.
	wildcardPattern = regexp.MustCompile(`__([^\n\r]*?)__`)

	// tagPattern: <kind:name[:extra]>, kind case-insensitive.
	tagPattern = regexp.MustCompile(`<((?i:lora|lyco|hypernet)):([^:\n\r>]+)(?::([^\n\r>]*))?>`)
)

// Scan returns the wildcard and inline tag tokens of text ordered by start offset,
// wildcards first on ties. The two patterns are matched independently, so a tag
// that contains a wildcard yields both tokens.
func Scan(text string) []Token {
	var tokens []Token
	for _, m := range wildcardPattern.FindAllStringSubmatchIndex(text, -1) {
		tokens = append(tokens, newToken(text, Wildcard, m[0], m[1], m[2], m[3]))
	}
	for _, m := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
		tok := newToken(text, LoraTag, m[0], m[1], m[4], m[5])
		tok.Tag = strings.ToLower(text[m[2]:m[3]])
		tokens = append(tokens, tok)
	}
	sortTokens(tokens)
	return tokens
}

// newToken converts byte indices into rune offsets. Text is the identifier
// (the wildcard path or the tag name) found between innerStart and innerEnd.
func newToken(text string, kind TokenKind, start, end, innerStart, innerEnd int) Token {
	startRune := utf8.RuneCountInString(text[:start])
	return Token{
		Kind:  kind,
		Start: startRune,
		End:   startRune + utf8.RuneCountInString(text[start:end]),
		Text:  text[innerStart:innerEnd],
	}
}

func sortTokens(tokens []Token) {
	slices.SortStableFunc(tokens, func(a, b Token) int { return a.Start - b.Start })
}
