package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rivo/tview"
)

var ansiSGRPattern = regexp.MustCompile(`\x1b\[([0-9;]*)m`)

// sgrState is the colour state an SGR sequence stream has built up so far.
type sgrState struct {
	fg, bg string
	bold   bool
	italic bool
}

// ANSIToTview turns SGR escape sequences (as produced by glamour) into tview
// colour tags. Other escape sequences are left alone. Square brackets in the
// text are escaped so tview does not read them as tags.
func ANSIToTview(text string) string {
	var b strings.Builder
	var state sgrState
	last := 0

	for _, m := range ansiSGRPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(tview.Escape(text[last:m[0]]))
		next := state.apply(text[m[2]:m[3]])
		if next != state {
			state = next
			b.WriteString(state.tag())
		}
		last = m[1]
	}
	b.WriteString(tview.Escape(text[last:]))
	return b.String()
}

// StripANSI removes SGR sequences.
func StripANSI(text string) string {
	return ansiSGRPattern.ReplaceAllString(text, "")
}

func (s sgrState) apply(params string) sgrState {
	if params == "" {
		return sgrState{}
	}
	parts := strings.Split(params, ";")
	for i := 0; i < len(parts); i++ {
		code, err := strconv.Atoi(parts[i])
		if err != nil {
			continue
		}
		switch code {
		case 0:
			s = sgrState{}
		case 1:
			s.bold = true
		case 3:
			s.italic = true
		case 22:
			s.bold = false
		case 23:
			s.italic = false
		case 39:
			s.fg = ""
		case 49:
			s.bg = ""
		case 38, 48:
			color, used := extendedColor(parts[i+1:])
			if used == 0 {
				continue
			}
			if code == 38 {
				s.fg = color
			} else {
				s.bg = color
			}
			i += used
		default:
			switch {
			case code >= 30 && code <= 37:
				s.fg = Ansi256ToHex(code - 30)
			case code >= 90 && code <= 97:
				s.fg = Ansi256ToHex(code - 90 + 8)
			case code >= 40 && code <= 47:
				s.bg = Ansi256ToHex(code - 40)
			}
		}
	}
	return s
}

// extendedColor decodes the arguments of a 38/48 code: "5;n" or "2;r;g;b".
// It returns how many parameters it consumed.
func extendedColor(args []string) (string, int) {
	if len(args) >= 2 && args[0] == "5" {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", 0
		}
		return Ansi256ToHex(n), 2
	}
	if len(args) >= 4 && args[0] == "2" {
		r, _ := strconv.Atoi(args[1])
		g, _ := strconv.Atoi(args[2])
		b, _ := strconv.Atoi(args[3])
		return fmt.Sprintf("#%02x%02x%02x", r, g, b), 4
	}
	return "", 0
}

func (s sgrState) tag() string {
	fg, bg := s.fg, s.bg
	if fg == "" {
		fg = "-"
	}
	if bg == "" {
		bg = "-"
	}
	attr := ""
	if s.bold {
		attr += "b"
	}
	if s.italic {
		attr += "i"
	}
	if attr == "" {
		attr = "-"
	}
	return fmt.Sprintf("[%s:%s:%s]", fg, bg, attr)
}

// Ansi256ToHex converts an ANSI 256 colour code to a hex colour.
func Ansi256ToHex(code int) string {
	r, g, b := Ansi256ToRGB(code)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Ansi256ToRGB converts an ANSI 256 colour code to RGB.
func Ansi256ToRGB(code int) (r, g, b int) {
	switch {
	case code < 0:
		return 0, 0, 0
	case code < 16:
		standard := [16][3]int{
			{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
			{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
			{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
			{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
		}
		c := standard[code]
		return c[0], c[1], c[2]
	case code <= 231:
		code -= 16
		return (code / 36) * 51, ((code / 6) % 6) * 51, (code % 6) * 51
	case code <= 255:
		gray := 8 + (code-232)*10
		return gray, gray, gray
	default:
		return 0, 0, 0
	}
}
