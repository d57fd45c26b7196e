package richprompt

import (
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"
)

// Names is an immutable snapshot of the externally maintained name lists: known inline
// tag names and known wildcard files. Lookups are case-insensitive and return the
// canonical spelling from the list. A nil *Names knows nothing.
type Names struct {
	tags      map[string]string
	wildcards map[string]string
}

// NewNames builds a snapshot. Wildcard entries are normalized with NormalizeWildcardPath.
func NewNames(tags, wildcards []string) *Names {
	n := &Names{
		tags:      make(map[string]string, len(tags)),
		wildcards: make(map[string]string, len(wildcards)),
	}
	for _, t := range tags {
		if key := tagKey(t); key != "" {
			n.tags[key] = strings.TrimSpace(t)
		}
	}
	for _, w := range wildcards {
		canonical := NormalizeWildcardPath(w)
		if canonical != "" {
			n.wildcards[fold(canonical)] = canonical
		}
	}
	return n
}

// Tag looks up an inline tag name. It returns the canonical spelling.
func (n *Names) Tag(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	canonical, ok := n.tags[tagKey(name)]
	return canonical, ok
}

// Wildcard looks up a wildcard identifier as written between the underscores.
func (n *Names) Wildcard(identifier string) (string, bool) {
	if n == nil {
		return "", false
	}
	canonical, ok := n.wildcards[fold(NormalizeWildcardPath(identifier))]
	return canonical, ok
}

// TagNames returns the canonical tag names, sorted.
func (n *Names) TagNames() []string {
	if n == nil {
		return nil
	}
	return sortedValues(n.tags)
}

// WildcardNames returns the canonical wildcard paths, sorted.
func (n *Names) WildcardNames() []string {
	if n == nil {
		return nil
	}
	return sortedValues(n.wildcards)
}

// WithTags returns a copy of the snapshot with the tag list replaced.
func (n *Names) WithTags(tags []string) *Names {
	return NewNames(tags, n.WildcardNames())
}

// WithWildcards returns a copy of the snapshot with the wildcard list replaced.
func (n *Names) WithWildcards(wildcards []string) *Names {
	return NewNames(n.TagNames(), wildcards)
}

func tagKey(name string) string {
	return fold(strings.TrimSpace(name))
}

// fold uses a fresh Caser on every call: casers carry state and must not be shared
// between the event loop and the refresher goroutine.
func fold(s string) string {
	return cases.Fold().String(s)
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Catalog publishes the latest Names snapshot. Readers never block on a refresh;
// writers replace the whole snapshot.
type Catalog struct {
	current atomic.Pointer[Names]
}

// NewCatalog creates a catalog holding initial (nil means empty).
func NewCatalog(initial *Names) *Catalog {
	c := &Catalog{}
	if initial == nil {
		initial = NewNames(nil, nil)
	}
	c.current.Store(initial)
	return c
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Names {
	return c.current.Load()
}

// Store replaces the snapshot.
func (c *Catalog) Store(n *Names) {
	if n == nil {
		n = NewNames(nil, nil)
	}
	c.current.Store(n)
}

// UpdateTags swaps in a snapshot with a new tag list, keeping the wildcard list.
func (c *Catalog) UpdateTags(tags []string) {
	for {
		old := c.current.Load()
		if c.current.CompareAndSwap(old, old.WithTags(tags)) {
			return
		}
	}
}

// UpdateWildcards swaps in a snapshot with a new wildcard list, keeping the tag list.
func (c *Catalog) UpdateWildcards(wildcards []string) {
	for {
		old := c.current.Load()
		if c.current.CompareAndSwap(old, old.WithWildcards(wildcards)) {
			return
		}
	}
}
