package richprompt

import (
	"fmt"
	"strings"
)

// Palette holds the inline CSS declarations used for each token class.
// The zero value is not useful; start from DefaultPalette.
type Palette struct {
	CommentLarge  string `mapstructure:"comment_large" yaml:"comment_large"`
	CommentMedium string `mapstructure:"comment_medium" yaml:"comment_medium"`
	CommentSmall  string `mapstructure:"comment_small" yaml:"comment_small"`
	Wildcard      string `mapstructure:"wildcard" yaml:"wildcard"`
	Unresolved    string `mapstructure:"unresolved" yaml:"unresolved"`
	Lora          string `mapstructure:"lora" yaml:"lora"`
	Lyco          string `mapstructure:"lyco" yaml:"lyco"`
	Hypernet      string `mapstructure:"hypernet" yaml:"hypernet"`
	Weight        string `mapstructure:"weight" yaml:"weight"`
	Paren         string `mapstructure:"paren" yaml:"paren"`
	Combo         string `mapstructure:"combo" yaml:"combo"`
	Punctuation   string `mapstructure:"punctuation" yaml:"punctuation"`
}

// DefaultPalette returns the built-in colour scheme.
func DefaultPalette() Palette {
	return Palette{
		CommentLarge:  "color:#FFA500; font-style:italic; font-size:2em;",
		CommentMedium: "color:#A020F0; font-style:italic; font-size:1.5em;",
		CommentSmall:  "color:#6A9955; font-style:italic;",
		Wildcard:      "color:#FFD700; font-weight:bold;",
		Unresolved:    "color:#FF5555; font-weight:bold;",
		Lora:          "color:#F4A460; font-weight:bold;",
		Lyco:          "color:#DDA0DD; font-weight:bold;",
		Hypernet:      "color:#87CEEB; font-weight:bold;",
		Weight:        "color:#4AA3FF; font-weight:bold;",
		Paren:         "color:#00FFFF; font-weight:bold;",
		Combo:         "color:#FF6644; font-weight:bold;",
		Punctuation:   "color:#FFFF00; font-weight:bold;",
	}
}

// Merge returns p with every empty field taken from fallback.
func (p Palette) Merge(fallback Palette) Palette {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return Palette{
		CommentLarge:  pick(p.CommentLarge, fallback.CommentLarge),
		CommentMedium: pick(p.CommentMedium, fallback.CommentMedium),
		CommentSmall:  pick(p.CommentSmall, fallback.CommentSmall),
		Wildcard:      pick(p.Wildcard, fallback.Wildcard),
		Unresolved:    pick(p.Unresolved, fallback.Unresolved),
		Lora:          pick(p.Lora, fallback.Lora),
		Lyco:          pick(p.Lyco, fallback.Lyco),
		Hypernet:      pick(p.Hypernet, fallback.Hypernet),
		Weight:        pick(p.Weight, fallback.Weight),
		Paren:         pick(p.Paren, fallback.Paren),
		Combo:         pick(p.Combo, fallback.Combo),
		Punctuation:   pick(p.Punctuation, fallback.Punctuation),
	}
}

// Style returns the declaration for a token kind. LoraTag yields the lora colour;
// use TagStyle for the other tag kinds.
func (p Palette) Style(kind TokenKind) string {
	switch kind {
	case CommentLarge:
		return p.CommentLarge
	case CommentMedium:
		return p.CommentMedium
	case CommentSmall:
		return p.CommentSmall
	case Wildcard:
		return p.Wildcard
	case LoraTag:
		return p.Lora
	case WeightNumber:
		return p.Weight
	case Paren:
		return p.Paren
	case ComboBrace, ComboBar:
		return p.Combo
	case Punctuation:
		return p.Punctuation
	default:
		return ""
	}
}

// TagStyle returns the base colour for an inline tag kind keyword.
func (p Palette) TagStyle(kind string) string {
	switch strings.ToLower(kind) {
	case TagKindLyco:
		return p.Lyco
	case TagKindHypernet:
		return p.Hypernet
	default:
		return p.Lora
	}
}

// span wraps already-escaped markup in a styled span. The style is attribute-escaped.
func span(style, inner string) string {
	return fmt.Sprintf(`<span style="%s">%s</span>`, Escape(style), inner)
}
