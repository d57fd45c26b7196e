// Package loaders fetches the data the prompt editor depends on but does not own:
// known tag names, the wildcard file index and previews.
package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/boolean-maybe/richprompt/richprompt"
)

// maxBody caps responses from collaborators.
const maxBody = 4 << 20

// getJSON fetches url and decodes the body into v. Every failure wraps
// richprompt.ErrCollaboratorUnavailable.
func getJSON(ctx context.Context, client *http.Client, url string, v any) (err error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", richprompt.ErrCollaboratorUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %w", richprompt.ErrCollaboratorUnavailable, url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", richprompt.ErrCollaboratorUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: reading response body: %w", richprompt.ErrCollaboratorUnavailable, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", richprompt.ErrCollaboratorUnavailable, url, err)
	}
	return nil
}
