package tview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadings(t *testing.T) {
	got := headings("# Title\n\ntext\n\n## Keys\n\n## Tags\n")
	require.Len(t, got, 3)
	assert.Equal(t, Section{Title: "Title", Level: 1}, got[0])
	assert.Equal(t, "Keys", got[1].Title)
	assert.Equal(t, 2, got[2].Level)
}

func TestLocateSections(t *testing.T) {
	sections := []Section{{Title: "Keys"}, {Title: "Missing"}, {Title: "Tags"}}
	got := locateSections(sections, "intro\n  Keys  \nbody\n Tags\nKeys")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Row)
	assert.Equal(t, "Tags", got[1].Title)
	assert.Equal(t, 3, got[1].Row)
}

func TestNewHelpView(t *testing.T) {
	h := NewHelpView(60)
	sections := h.Sections()
	require.NotEmpty(t, sections)
	assert.Equal(t, "richprompt", sections[0].Title)
	for i := 1; i < len(sections); i++ {
		assert.Greater(t, sections[i].Row, sections[i-1].Row)
	}
}
