package richprompt

import "github.com/sahilm/fuzzy"

// Suggest returns up to limit candidates that fuzzily match name, best first.
// It backs the "did you mean" line shown for unresolved names.
func Suggest(name string, candidates []string, limit int) []string {
	if name == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}
	matches := fuzzy.Find(name, candidates)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}
