package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/boolean-maybe/richprompt/richprompt"
)

// TagSource lists the known inline tag names.
type TagSource interface {
	FetchTags(ctx context.Context) ([]string, error)
}

// HTTPTagSource reads tag names from a JSON endpoint. The body is either an array
// of names or an object with a "names" array.
type HTTPTagSource struct {
	URL string
	// Client is used for requests; if nil, http.DefaultClient is used.
	Client *http.Client
}

func (s *HTTPTagSource) FetchTags(ctx context.Context) ([]string, error) {
	var raw json.RawMessage
	if err := getJSON(ctx, s.Client, s.URL, &raw); err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return names, nil
	}
	var wrapped struct {
		Names []string `json:"names"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: unexpected tag list format: %w", richprompt.ErrCollaboratorUnavailable, err)
	}
	return wrapped.Names, nil
}

// FileTagSource reads tag names from a YAML file holding a list of names, or a
// mapping with a "names" list.
type FileTagSource struct {
	Path string
}

func (s *FileTagSource) FetchTags(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading tag file: %w", richprompt.ErrCollaboratorUnavailable, err)
	}

	var names []string
	if err := yaml.Unmarshal(data, &names); err == nil {
		return names, nil
	}
	var wrapped struct {
		Names []string `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: parsing tag file %s: %w", richprompt.ErrCollaboratorUnavailable, s.Path, err)
	}
	return wrapped.Names, nil
}

// MultiTagSource merges the names of several sources. It fails only when every
// source fails.
type MultiTagSource []TagSource

func (m MultiTagSource) FetchTags(ctx context.Context) ([]string, error) {
	var (
		names   []string
		lastErr error
		ok      bool
	)
	for _, src := range m {
		got, err := src.FetchTags(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		ok = true
		names = append(names, got...)
	}
	if !ok && lastErr != nil {
		return nil, lastErr
	}
	return names, nil
}
