// Package expand resolves dynamic prompt syntax into a concrete prompt:
// __wildcard__ references are replaced by a random line of their file and
// {a|b|0.2::c} combinations by one weighted choice. The result is then cleaned
// up (see Cleanup).
package expand

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/boolean-maybe/richprompt/internal/logger"
	"github.com/boolean-maybe/richprompt/richprompt"
)

// Pass limits. Wildcard files may reference each other, so expansion stops
// after a bounded amount of work instead of looping forever.
const (
	maxRounds          = 30
	maxWildcardPasses  = 10
	maxCombinationRuns = 30
)

var (
	wildcardRef  = regexp.MustCompile(`__(.+?)__`)
	innermostSet = regexp.MustCompile(`\{([^{}]*)\}`)
)

// Options controls the cleanup applied after expansion.
type Options struct {
	// Suffix is appended to every non-empty line.
	Suffix string `mapstructure:"suffix" yaml:"suffix"`
	// SingleLine joins lines with a space instead of a newline.
	SingleLine bool `mapstructure:"single_line" yaml:"single_line"`
	// TrimWhitespace trims lines, squeezes repeated spaces and drops blank lines.
	TrimWhitespace bool `mapstructure:"trim_whitespace" yaml:"trim_whitespace"`
	// RemoveEmptyTags drops empty entries between separators: "cat, , dog" -> "cat, dog".
	RemoveEmptyTags bool `mapstructure:"remove_empty_tags" yaml:"remove_empty_tags"`
}

// DefaultOptions returns the usual cleanup settings.
func DefaultOptions() Options {
	return Options{
		SingleLine:      true,
		TrimWhitespace:  true,
		RemoveEmptyTags: true,
	}
}

// WildcardSource returns the choices of a wildcard. ok is false when no such
// wildcard exists; the reference is then left in the prompt.
type WildcardSource interface {
	Choices(ctx context.Context, name string) (choices []string, ok bool, err error)
}

// DirSource reads wildcards from text files under Dir. Sub-directories are
// addressed with '/' or '\' in the name; matching is case-insensitive.
type DirSource struct {
	Dir string
}

// Choices implements WildcardSource.
func (d DirSource) Choices(_ context.Context, name string) ([]string, bool, error) {
	if d.Dir == "" {
		return nil, false, nil
	}
	path, err := richprompt.ResolveWildcardFile(d.Dir, name)
	if errors.Is(err, richprompt.ErrFileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading wildcard %q: %w", name, err)
	}
	return ParseChoices(string(data)), true, nil
}

// ParseChoices extracts the choices of a wildcard file: one per line, blank and
// comment lines skipped, trailing comments removed.
func ParseChoices(content string) []string {
	var choices []string
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		choices = append(choices, line)
	}
	return choices
}

// Expander expands prompts. It is safe for concurrent use if its source is.
type Expander struct {
	source WildcardSource
	opts   Options
}

// New creates an expander. A nil source knows no wildcards.
func New(source WildcardSource, opts Options) *Expander {
	return &Expander{source: source, opts: opts}
}

// Expand resolves prompt with the given seed and cleans up the result.
// The same seed and inputs always give the same output.
func (e *Expander) Expand(ctx context.Context, prompt string, seed uint64) (string, error) {
	resolved, err := e.Resolve(ctx, prompt, seed)
	if err != nil {
		return "", err
	}
	return Cleanup(resolved, e.opts), nil
}

// Resolve substitutes wildcards and combinations without cleaning up.
func (e *Expander) Resolve(ctx context.Context, prompt string, seed uint64) (string, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for round := 0; round < maxRounds; round++ {
		hasWildcards := strings.Contains(prompt, "__")
		hasSets := strings.ContainsAny(prompt, "{}")
		if !hasWildcards && !hasSets {
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		for pass := 0; hasWildcards && pass < maxWildcardPasses; pass++ {
			next := e.replaceWildcards(ctx, prompt, rng)
			if next == prompt {
				break
			}
			prompt = next
			hasWildcards = strings.Contains(prompt, "__")
		}

		for run := 0; hasSets && run < maxCombinationRuns; run++ {
			next := replaceCombinations(prompt, rng)
			if next == prompt {
				break
			}
			prompt = next
			hasSets = strings.ContainsAny(prompt, "{}")
		}
	}
	return prompt, nil
}

func (e *Expander) replaceWildcards(ctx context.Context, prompt string, rng *rand.Rand) string {
	if e.source == nil {
		return prompt
	}
	return wildcardRef.ReplaceAllStringFunc(prompt, func(match string) string {
		name := match[2 : len(match)-2]
		choices, ok, err := e.source.Choices(ctx, name)
		if err != nil {
			logger.L(ctx).Warn("wildcard unavailable", zap.String("name", name), zap.Error(err))
			return match
		}
		if !ok {
			return match
		}
		if len(choices) == 0 {
			return ""
		}
		return choices[rng.IntN(len(choices))]
	})
}

// replaceCombinations resolves innermost {...} sets until none is left.
func replaceCombinations(prompt string, rng *rand.Rand) string {
	for {
		m := innermostSet.FindStringSubmatchIndex(prompt)
		if m == nil {
			return prompt
		}
		choice := pick(parseChoices(prompt[m[2]:m[3]]), rng)
		prompt = prompt[:m[0]] + choice + prompt[m[1]:]
	}
}

type weighted struct {
	text   string
	weight float64
}

// parseChoices splits a set body on '|'. "w::text" gives text the weight w when
// w parses as a number in [0, 1]; otherwise the whole item is an ordinary choice.
// Explicit weights above 1 in total are scaled down; whatever is left is shared
// equally by the ordinary choices.
func parseChoices(body string) []weighted {
	var explicit, plain []weighted
	total := 0.0
	for _, item := range strings.Split(body, "|") {
		if w, text, ok := strings.Cut(item, "::"); ok {
			if weight, err := strconv.ParseFloat(strings.TrimSpace(w), 64); err == nil && weight >= 0 && weight <= 1 {
				explicit = append(explicit, weighted{text: text, weight: weight})
				total += weight
				continue
			}
		}
		plain = append(plain, weighted{text: item})
	}

	if total > 1 {
		for i := range explicit {
			explicit[i].weight /= total
		}
		total = 1
	}
	if len(plain) > 0 {
		share := (1 - total) / float64(len(plain))
		for i := range plain {
			plain[i].weight = share
		}
	}
	return append(explicit, plain...)
}

// pick draws one choice by weight. With no positive weight at all every choice
// is equally likely.
func pick(choices []weighted, rng *rand.Rand) string {
	if len(choices) == 0 {
		return ""
	}
	total := 0.0
	for _, c := range choices {
		total += c.weight
	}
	if total <= 0 {
		return choices[rng.IntN(len(choices))].text
	}
	r := rng.Float64() * total
	for _, c := range choices {
		if r < c.weight {
			return c.text
		}
		r -= c.weight
	}
	return choices[len(choices)-1].text
}

// splitLines splits on \n, \r\n and \r.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
