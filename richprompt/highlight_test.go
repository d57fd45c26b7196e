package richprompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHighlight_Lossless(t *testing.T) {
	h := NewHighlighter(DefaultPalette())
	names := NewNames([]string{"MyLora"}, []string{"colors"})

	rapid.Check(t, func(t *rapid.T) {
		s := anyText().Draw(t, "text")
		got := StripMarkup(h.Highlight(s, names))
		if got != s {
			t.Fatalf("stripped markup = %q, want %q", got, s)
		}
	})
}

func TestHighlight_Deterministic(t *testing.T) {
	h := NewHighlighter(DefaultPalette())
	names := NewNames([]string{"MyLora"}, []string{"colors"})

	rapid.Check(t, func(t *rapid.T) {
		s := anyText().Draw(t, "text")
		if a, b := h.Highlight(s, names), h.Highlight(s, names); a != b {
			t.Fatalf("two runs differ:\n%s\n%s", a, b)
		}
	})
}

func TestHighlight_Cases(t *testing.T) {
	p := DefaultPalette()
	names := NewNames([]string{"MyLora"}, []string{"colors", "people/Hair"})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "a cat",
			want: "a cat",
		},
		{
			name: "first marker run decides comment size",
			in:   "a ### b ## c # d",
			want: "a " + styled(p.CommentLarge, "### b ## c # d"),
		},
		{
			name: "four markers are still large",
			in:   "#### big",
			want: styled(p.CommentLarge, "#### big"),
		},
		{
			name: "medium comment",
			in:   "## mid",
			want: styled(p.CommentMedium, "## mid"),
		},
		{
			name: "small comment per line",
			in:   "x # one\ny",
			want: "x " + styled(p.CommentSmall, "# one") + "\ny",
		},
		{
			name: "comment body is escaped and never re-scanned",
			in:   "# __colors__ (a, b) <x>",
			want: styled(p.CommentSmall, "# __colors__ (a, b) &lt;x&gt;"),
		},
		{
			name: "hash after angle bracket is not a comment",
			in:   "<#x",
			want: "&lt;#x",
		},
		{
			name: "comment stops at carriage return",
			in:   "# a\rb",
			want: styled(p.CommentSmall, "# a") + "\rb",
		},
		{
			name: "known wildcard",
			in:   "__colors__",
			want: styled(p.Wildcard, "__colors__"),
		},
		{
			name: "unknown wildcard",
			in:   "__missing__",
			want: styled(p.Unresolved, "__missing__"),
		},
		{
			name: "wildcard path is normalized before lookup",
			in:   `__People\hair.txt__`,
			want: styled(p.Wildcard, `__People\hair.txt__`),
		},
		{
			name: "known tag with weight",
			in:   "<lora:mylora:0.8>",
			want: styled(p.Lora, "&lt;lora:mylora"+styled(p.Weight, ":0.8")+"&gt;"),
		},
		{
			name: "unknown tag uses unresolved colour whatever its kind",
			in:   "<LYCO:nope>",
			want: styled(p.Unresolved, "&lt;LYCO:nope&gt;"),
		},
		{
			name: "malformed tag degrades to escaped text",
			in:   "<lora:>",
			want: "&lt;lora:&gt;",
		},
		{
			name: "weight needs a later closing paren",
			in:   "(cat:1.2)",
			want: styled(p.Paren, "(") + "cat" + styled(p.Weight, ":1.2") + styled(p.Paren, ")"),
		},
		{
			name: "weight without closing paren stays plain",
			in:   "cat:1.2",
			want: "cat:1.2",
		},
		{
			name: "unbalanced parens are each styled",
			in:   "((a",
			want: styled(p.Paren, "(") + styled(p.Paren, "(") + "a",
		},
		{
			name: "combination with weight prefix",
			in:   "{a|0.5::b}",
			want: styled(p.Combo, "{") + "a" + styled(p.Combo, "|") + styled(p.Weight, "0.5::") + "b" + styled(p.Combo, "}"),
		},
		{
			name: "punctuation skips decimals and ellipses",
			in:   "a, b. c...",
			want: "a" + styled(p.Punctuation, ",") + " b" + styled(p.Punctuation, ".") + " c.." + styled(p.Punctuation, "."),
		},
		{
			name: "residual escaping",
			in:   `a < b & "c"`,
			want: `a &lt; b &amp; "c"`,
		},
	}

	h := NewHighlighter(p)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Highlight(tt.in, names))
		})
	}
}

func TestHighlight_TagKindsHaveTheirOwnColour(t *testing.T) {
	p := DefaultPalette()
	h := NewHighlighter(p)
	names := NewNames([]string{"style"}, nil)

	assert.Equal(t, styled(p.Lyco, "&lt;lyco:style&gt;"), h.Highlight("<lyco:style>", names))
	assert.Equal(t, styled(p.Hypernet, "&lt;Hypernet:style&gt;"), h.Highlight("<Hypernet:style>", names))
}

func TestHighlight_StrayPlaceholderRunes(t *testing.T) {
	h := NewHighlighter(DefaultPalette())

	in := "a\uE000\uE010\uE001b"
	out := h.Highlight(in, nil)
	assert.Contains(t, out, "&#xE000;")
	assert.Equal(t, in, StripMarkup(out))
}

func TestHighlight_CustomPaletteIsNotRescanned(t *testing.T) {
	p := DefaultPalette()
	p.Paren = "content:'(,)'"
	h := NewHighlighter(p)

	out := h.Highlight("()", nil)
	want := styled(Escape(p.Paren), "(") + styled(Escape(p.Paren), ")")
	assert.Equal(t, want, out)
}

func TestHighlight_EmptyPaletteFallsBack(t *testing.T) {
	h := NewHighlighter(Palette{Paren: "color:red;"})

	require.Equal(t, "color:red;", h.Palette().Paren)
	assert.Equal(t, DefaultPalette().Combo, h.Palette().Combo)
}

func TestStageNames(t *testing.T) {
	assert.Equal(t, []string{
		"markers", "comments", "wildcards", "tags", "escape",
		"weights", "parens", "combo-weights", "combo", "punctuation",
	}, StageNames())
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&amp;lt; &lt;b&gt; &quot;q&quot; &#39;s&#39;", Escape(`&lt; <b> "q" 's'`))
	assert.Equal(t, `&lt; <b> "q" 's'`, unescape(Escape(`&lt; <b> "q" 's'`)))
}
