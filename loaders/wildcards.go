package loaders

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/boolean-maybe/richprompt/richprompt"
)

const wildcardGlob = "**/*.txt"

// WildcardSource lists the known wildcard identifiers.
type WildcardSource interface {
	ListWildcards(ctx context.Context) ([]string, error)
}

// DirWildcardSource indexes the text files below Dir. Identifiers are the
// slash-separated paths relative to Dir without the ".txt" extension.
type DirWildcardSource struct {
	Dir string
}

func (s *DirWildcardSource) ListWildcards(ctx context.Context) ([]string, error) {
	if s.Dir == "" {
		return nil, nil
	}
	root, err := filepath.Abs(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving wildcard dir: %w", richprompt.ErrCollaboratorUnavailable, err)
	}

	var names []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ok, _ := doublestar.Match(wildcardGlob, strings.ToLower(rel)); ok {
			names = append(names, richprompt.NormalizeWildcardPath(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %w", richprompt.ErrCollaboratorUnavailable, s.Dir, err)
	}

	sort.Strings(names)
	return names, nil
}
