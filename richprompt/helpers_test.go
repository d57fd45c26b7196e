package richprompt

import (
	"strings"

	"pgregory.net/rapid"
)

// promptPieces are fragments that exercise every stage, including the awkward ones.
var promptPieces = []string{
	"#", "##", "###", "<#", "__", "colors", "__colors__", "<lora:", "<LyCo:", "<hypernet:",
	"MyLora", ":0.8", ":1", "::", "2::", ">", "<", "(", ")", "{", "}", "|", ",", ".", "..",
	"&", "&amp;", "'", `"`, " ", "\n", "\t", "é", "日本", "a", "cat",
}

// promptText draws strings biased towards prompt syntax.
func promptText() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(rapid.SampledFrom(promptPieces), 0, 40).Draw(t, "parts")
		return strings.Join(parts, "")
	})
}

// anyText mixes prompt syntax with arbitrary runes, including line terminators,
// NUL and the placeholder alphabet.
func anyText() *rapid.Generator[string] {
	return rapid.OneOf(
		promptText(),
		rapid.String(),
		rapid.Custom(func(t *rapid.T) string {
			a := promptText().Draw(t, "a")
			r := rapid.SampledFrom([]rune{'\uE000', '\uE001', '\uE010', '\uE01F', '\r', 0}).Draw(t, "r")
			b := promptText().Draw(t, "b")
			return a + string(r) + b
		}),
	)
}

func styled(style, inner string) string {
	return `<span style="` + style + `">` + inner + `</span>`
}

type fakeNames struct{ names *Names }

func (f fakeNames) Snapshot() *Names { return f.names }
