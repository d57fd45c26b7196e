package richprompt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Caret is a position in a rendered tree.
type Caret = Position[*html.Node]

// NodeLeaves is the text nodes of a rendered tree in document order.
type NodeLeaves []*html.Node

func (l NodeLeaves) Len() int { return len(l) }

func (l NodeLeaves) At(i int) (*html.Node, int) {
	return l[i], utf8.RuneCountInString(l[i].Data)
}

// ParseMarkup builds the rendered tree for highlighted markup. The returned root is
// a detached div holding the parsed fragment.
func ParseMarkup(markup string) (*html.Node, error) {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), root)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// TextLeaves collects the text nodes under root in document order.
func TextLeaves(root *html.Node) NodeLeaves {
	var leaves NodeLeaves
	if root == nil {
		return leaves
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			leaves = append(leaves, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return leaves
}

// TextContent concatenates the text of every leaf under root.
func TextContent(root *html.Node) string {
	var b strings.Builder
	for _, n := range TextLeaves(root) {
		b.WriteString(n.Data)
	}
	return b.String()
}

// OffsetOf maps a caret in the tree under root to a rune offset.
func OffsetOf(root *html.Node, caret Caret) (int, error) {
	return ToOffset[*html.Node](TextLeaves(root), caret)
}

// CaretAt maps a rune offset to a caret in the tree under root, clamping to the ends.
func CaretAt(root *html.Node, offset int) Caret {
	return ToPosition[*html.Node](TextLeaves(root), offset)
}

// RenderMarkup serializes the children of root back to markup.
func RenderMarkup(root *html.Node) (string, error) {
	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("render markup: %w", err)
		}
	}
	return b.String(), nil
}

var markupTag = regexp.MustCompile(`<[^>]*>`)

// StripMarkup removes tags and decodes entities, recovering the text a piece of
// highlighted markup displays.
func StripMarkup(markup string) string {
	return unescape(markupTag.ReplaceAllString(markup, ""))
}

// StyleOf returns the style attribute of the nearest element at or above n.
func StyleOf(n *html.Node) string {
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		for _, a := range n.Attr {
			if a.Key == "style" {
				return a.Val
			}
		}
	}
	return ""
}
