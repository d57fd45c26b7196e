package richprompt

import (
	"strings"

	"golang.org/x/net/html"
)

// TargetKind is the class of a hover target.
type TargetKind int

const (
	TargetWildcard TargetKind = iota + 1
	TargetLoraTag
)

func (k TargetKind) String() string {
	switch k {
	case TargetWildcard:
		return "wildcard"
	case TargetLoraTag:
		return "lora-tag"
	default:
		return "none"
	}
}

// HoverTarget is the token under the pointer. Start and End are rune offsets in
// the rendered root's text. TagKind is set for inline tags only.
type HoverTarget struct {
	Kind       TargetKind
	Identifier string
	TagKind    string
	Start      int
	End        int
	Resolved   bool
}

// Same reports whether t and o denote the same token occurrence.
func (t HoverTarget) Same(o HoverTarget) bool {
	return t.Kind == o.Kind && t.Identifier == o.Identifier && t.Start == o.Start && t.End == o.End
}

// PointLocator maps a screen coordinate to a position in the rendered tree.
// It is provided by whatever draws the tree.
type PointLocator interface {
	CaretFromPoint(x, y int) (Caret, bool)
}

// PointLocatorFunc adapts a function to PointLocator.
type PointLocatorFunc func(x, y int) (Caret, bool)

func (f PointLocatorFunc) CaretFromPoint(x, y int) (Caret, bool) { return f(x, y) }

// HoverResolver classifies the token under the pointer.
type HoverResolver struct{}

// NewHoverResolver creates a resolver.
func NewHoverResolver() *HoverResolver {
	return &HoverResolver{}
}

// Resolve maps (x, y) to a token. No locator, a point outside the text or a
// point over plain text all yield false.
func (r *HoverResolver) Resolve(root *html.Node, locator PointLocator, x, y int, names *Names) (HoverTarget, bool) {
	if locator == nil || root == nil {
		return HoverTarget{}, false
	}
	caret, ok := locator.CaretFromPoint(x, y)
	if !ok {
		return HoverTarget{}, false
	}
	return r.ResolveCaret(root, caret, names)
}

// ResolveCaret classifies the token at caret. Starting from the caret leaf's parent
// it widens the text window one ancestor at a time up to root, so a caret inside a
// nested span (a weight inside a tag) still finds the enclosing token.
func (r *HoverResolver) ResolveCaret(root *html.Node, caret Caret, names *Names) (HoverTarget, bool) {
	if caret.Leaf == nil || !within(root, caret.Leaf) {
		return HoverTarget{}, false
	}
	rootOffset, err := OffsetOf(root, caret)
	if err != nil {
		return HoverTarget{}, false
	}

	for el := caret.Leaf.Parent; el != nil; el = el.Parent {
		leaves := TextLeaves(el)
		local, err := ToOffset[*html.Node](leaves, caret)
		if err != nil {
			return HoverTarget{}, false
		}
		if target, ok := matchWindow(windowText(leaves), local, names); ok {
			shift := rootOffset - local
			target.Start += shift
			target.End += shift
			return target, true
		}
		if el == root {
			break
		}
	}
	return HoverTarget{}, false
}

// matchWindow looks for the token covering offset in a text window: an indexed
// wildcard first, then any inline tag.
func matchWindow(window string, offset int, names *Names) (HoverTarget, bool) {
	tokens := Scan(window)
	for _, tok := range tokens {
		if tok.Kind != Wildcard || offset < tok.Start || offset >= tok.End {
			continue
		}
		if canonical, ok := names.Wildcard(tok.Text); ok {
			return HoverTarget{
				Kind:       TargetWildcard,
				Identifier: canonical,
				Start:      tok.Start,
				End:        tok.End,
				Resolved:   true,
			}, true
		}
	}
	for _, tok := range tokens {
		if tok.Kind != LoraTag || offset < tok.Start || offset >= tok.End {
			continue
		}
		target := HoverTarget{
			Kind:       TargetLoraTag,
			Identifier: strings.TrimSpace(tok.Text),
			TagKind:    tok.Tag,
			Start:      tok.Start,
			End:        tok.End,
		}
		if canonical, ok := names.Tag(tok.Text); ok {
			target.Identifier = canonical
			target.Resolved = true
		}
		return target, true
	}
	return HoverTarget{}, false
}

func windowText(leaves NodeLeaves) string {
	var b strings.Builder
	for _, n := range leaves {
		b.WriteString(n.Data)
	}
	return b.String()
}

func within(root, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}
