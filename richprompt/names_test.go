package richprompt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_Lookup(t *testing.T) {
	n := NewNames([]string{" MyLora ", "détail"}, []string{`People\Hair.txt`, "colors"})

	got, ok := n.Tag("mylora")
	require.True(t, ok)
	assert.Equal(t, "MyLora", got)

	got, ok = n.Tag("  MYLORA")
	require.True(t, ok)
	assert.Equal(t, "MyLora", got)

	_, ok = n.Tag("DÉTAIL")
	assert.True(t, ok)

	got, ok = n.Wildcard("people/hair")
	require.True(t, ok)
	assert.Equal(t, "People/Hair", got)

	_, ok = n.Wildcard("nope")
	assert.False(t, ok)
}

func TestNames_NilKnowsNothing(t *testing.T) {
	var n *Names

	_, ok := n.Tag("x")
	assert.False(t, ok)
	_, ok = n.Wildcard("x")
	assert.False(t, ok)
	assert.Nil(t, n.TagNames())
	assert.Nil(t, n.WildcardNames())
}

func TestNames_WithLists(t *testing.T) {
	n := NewNames([]string{"b", "a"}, []string{"w"})

	assert.Equal(t, []string{"a", "b"}, n.TagNames())
	assert.Equal(t, []string{"w"}, n.WithTags([]string{"c"}).WildcardNames())
	assert.Equal(t, []string{"a", "b"}, n.WithWildcards(nil).TagNames())
}

func TestCatalog_SwapIsAtomic(t *testing.T) {
	c := NewCatalog(nil)
	old := c.Snapshot()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.UpdateTags([]string{"t"})
		}()
		go func() {
			defer wg.Done()
			c.UpdateWildcards([]string{"w"})
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, []string{"t"}, snap.TagNames())
	assert.Equal(t, []string{"w"}, snap.WildcardNames())
	assert.Empty(t, old.TagNames(), "earlier snapshots never change")
}
