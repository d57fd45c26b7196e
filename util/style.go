package util

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Declarations is a parsed inline CSS style attribute.
type Declarations map[string]string

// ParseDeclarations splits "a:b; c:d" into a map with lower-cased property names.
func ParseDeclarations(style string) Declarations {
	d := Declarations{}
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		d[name] = value
	}
	return d
}

// FontScale returns the font-size factor of a declaration set ("2em", "150%"),
// or 1 when there is none.
func (d Declarations) FontScale() float64 {
	size, ok := d["font-size"]
	if !ok {
		return 1
	}
	size = strings.ToLower(size)
	var factor float64
	var err error
	switch {
	case strings.HasSuffix(size, "em"):
		factor, err = strconv.ParseFloat(strings.TrimSuffix(size, "em"), 64)
	case strings.HasSuffix(size, "%"):
		factor, err = strconv.ParseFloat(strings.TrimSuffix(size, "%"), 64)
		factor /= 100
	default:
		return 1
	}
	if err != nil || factor <= 0 {
		return 1
	}
	return factor
}

// CSSToStyle applies an inline CSS style attribute on top of base.
//
// Terminals have one font size, so enlarged text is shown with extra attributes:
// 1.5em and up is underlined, 2em and up is also bold.
func CSSToStyle(style string, base tcell.Style) tcell.Style {
	d := ParseDeclarations(style)
	out := base

	if c, ok := d["color"]; ok {
		if color := tcell.GetColor(c); color != tcell.ColorDefault {
			out = out.Foreground(color)
		}
	}
	if c, ok := d["background-color"]; ok {
		if color := tcell.GetColor(c); color != tcell.ColorDefault {
			out = out.Background(color)
		}
	}
	switch strings.ToLower(d["font-weight"]) {
	case "bold", "bolder", "700", "800", "900":
		out = out.Bold(true)
	case "normal", "400":
		out = out.Bold(false)
	}
	if strings.EqualFold(d["font-style"], "italic") {
		out = out.Italic(true)
	}

	scale := d.FontScale()
	if scale >= 1.5 {
		out = out.Underline(true)
	}
	if scale >= 2 {
		out = out.Bold(true)
	}
	return out
}
