package loaders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/boolean-maybe/richprompt/expand"
	"github.com/boolean-maybe/richprompt/internal/logger"
	"github.com/boolean-maybe/richprompt/richprompt"
)

// DefaultPreviewLines is how many wildcard choices a wildcard preview shows.
const DefaultPreviewLines = 8

// HTTPPreviewProvider asks a model manager for tag previews:
// GET {BaseURL}/lm/loras/preview-url?name=NAME answers {"success": bool, "preview_url": string}.
type HTTPPreviewProvider struct {
	BaseURL string
	// Client is used for requests; if nil, http.DefaultClient is used.
	Client *http.Client
}

type previewURLResponse struct {
	Success    bool   `json:"success"`
	PreviewURL string `json:"preview_url"`
}

func (p *HTTPPreviewProvider) Preview(ctx context.Context, target richprompt.HoverTarget) (richprompt.Preview, error) {
	if target.Kind != richprompt.TargetLoraTag || p.BaseURL == "" {
		return richprompt.Preview{}, richprompt.ErrNoPreview
	}

	base := strings.TrimRight(p.BaseURL, "/")
	endpoint := base + "/lm/loras/preview-url?name=" + url.QueryEscape(target.Identifier)

	var resp previewURLResponse
	if err := getJSON(ctx, p.Client, endpoint, &resp); err != nil {
		return richprompt.Preview{}, err
	}
	if !resp.Success || resp.PreviewURL == "" {
		return richprompt.Preview{}, fmt.Errorf("%w: %s", richprompt.ErrNoPreview, target.Identifier)
	}

	media := resolveReference(base, resp.PreviewURL)
	return richprompt.Preview{
		Identifier: target.Identifier,
		URL:        media,
		Video:      richprompt.IsVideoURL(media),
	}, nil
}

// resolveReference makes a server-relative preview path absolute.
func resolveReference(base, ref string) string {
	b, err := url.Parse(base + "/")
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// WildcardPreviewProvider shows the first choices of a wildcard file.
type WildcardPreviewProvider struct {
	// Dir returns the current wildcard directory.
	Dir func() string
	// MaxLines limits the excerpt; zero uses DefaultPreviewLines.
	MaxLines int
}

func (p *WildcardPreviewProvider) Preview(_ context.Context, target richprompt.HoverTarget) (richprompt.Preview, error) {
	if target.Kind != richprompt.TargetWildcard || p.Dir == nil {
		return richprompt.Preview{}, richprompt.ErrNoPreview
	}

	path, err := richprompt.ResolveWildcardFile(p.Dir(), target.Identifier)
	if errors.Is(err, richprompt.ErrFileNotFound) {
		return richprompt.Preview{}, fmt.Errorf("%w: %s", richprompt.ErrNoPreview, target.Identifier)
	}
	if err != nil {
		return richprompt.Preview{}, fmt.Errorf("resolving wildcard %q: %w", target.Identifier, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return richprompt.Preview{}, fmt.Errorf("%w: reading %s: %w", richprompt.ErrCollaboratorUnavailable, path, err)
	}

	limit := p.MaxLines
	if limit <= 0 {
		limit = DefaultPreviewLines
	}
	choices := expand.ParseChoices(string(data))
	if len(choices) > limit {
		choices = append(choices[:limit:limit], fmt.Sprintf("… %d more", len(choices)-limit))
	}
	return richprompt.Preview{Identifier: target.Identifier, Lines: choices}, nil
}

// MultiPreviewProvider dispatches on the target kind.
type MultiPreviewProvider struct {
	Tags      richprompt.PreviewProvider
	Wildcards richprompt.PreviewProvider
}

func (m *MultiPreviewProvider) Preview(ctx context.Context, target richprompt.HoverTarget) (richprompt.Preview, error) {
	var next richprompt.PreviewProvider
	switch target.Kind {
	case richprompt.TargetLoraTag:
		next = m.Tags
	case richprompt.TargetWildcard:
		next = m.Wildcards
	}
	if next == nil {
		return richprompt.Preview{}, richprompt.ErrNoPreview
	}
	return next.Preview(ctx, target)
}

const (
	DefaultPreviewTTL      = 10 * time.Minute
	defaultCleanupInterval = 30 * time.Minute
)

type cachedPreview struct {
	preview richprompt.Preview
	missing bool
}

// CachedPreviewProvider remembers previews, and targets without one, for a TTL.
// Collaborator failures are not cached.
type CachedPreviewProvider struct {
	next  richprompt.PreviewProvider
	cache *gocache.Cache
}

// NewCachedPreviewProvider wraps next. A ttl of zero uses DefaultPreviewTTL.
func NewCachedPreviewProvider(next richprompt.PreviewProvider, ttl time.Duration) *CachedPreviewProvider {
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	return &CachedPreviewProvider{
		next:  next,
		cache: gocache.New(ttl, defaultCleanupInterval),
	}
}

func (c *CachedPreviewProvider) Preview(ctx context.Context, target richprompt.HoverTarget) (richprompt.Preview, error) {
	key := previewKey(target)
	if v, found := c.cache.Get(key); found {
		if entry, ok := v.(cachedPreview); ok {
			logger.L(ctx).Debug("preview cache hit", zap.String("key", key))
			if entry.missing {
				return richprompt.Preview{}, richprompt.ErrNoPreview
			}
			return entry.preview, nil
		}
	}

	p, err := c.next.Preview(ctx, target)
	switch {
	case err == nil:
		c.cache.SetDefault(key, cachedPreview{preview: p})
	case errors.Is(err, richprompt.ErrNoPreview):
		c.cache.SetDefault(key, cachedPreview{missing: true})
	}
	return p, err
}

// Flush drops every cached entry, e.g. after the wildcard directory changed.
func (c *CachedPreviewProvider) Flush() {
	c.cache.Flush()
}

func previewKey(t richprompt.HoverTarget) string {
	return t.Kind.String() + ":" + strings.ToLower(t.Identifier)
}
