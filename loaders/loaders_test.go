package loaders

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boolean-maybe/richprompt/richprompt"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func jsonServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPTagSource(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   []string
		err    bool
	}{
		{name: "array", body: `["styleA","Detail"]`, status: http.StatusOK, want: []string{"styleA", "Detail"}},
		{name: "object", body: `{"names":["one"]}`, status: http.StatusOK, want: []string{"one"}},
		{name: "bad json", body: `{`, status: http.StatusOK, err: true},
		{name: "server error", body: `[]`, status: http.StatusInternalServerError, err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.body, tt.status)
			got, err := (&HTTPTagSource{URL: srv.URL}).FetchTags(context.Background())
			if tt.err {
				require.ErrorIs(t, err, richprompt.ErrCollaboratorUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileTagSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "list.yaml", "- alpha\n- Beta\n")
	writeFile(t, dir, "wrapped.yaml", "names:\n  - gamma\n")

	got, err := (&FileTagSource{Path: filepath.Join(dir, "list.yaml")}).FetchTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "Beta"}, got)

	got, err = (&FileTagSource{Path: filepath.Join(dir, "wrapped.yaml")}).FetchTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, got)

	_, err = (&FileTagSource{Path: filepath.Join(dir, "missing.yaml")}).FetchTags(context.Background())
	require.ErrorIs(t, err, richprompt.ErrCollaboratorUnavailable)
}

type staticTags struct {
	names []string
	err   error
}

func (s staticTags) FetchTags(context.Context) ([]string, error) { return s.names, s.err }

func TestMultiTagSource(t *testing.T) {
	failing := staticTags{err: richprompt.ErrCollaboratorUnavailable}

	got, err := MultiTagSource{staticTags{names: []string{"a"}}, failing, staticTags{names: []string{"b"}}}.FetchTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	_, err = MultiTagSource{failing}.FetchTags(context.Background())
	require.ErrorIs(t, err, richprompt.ErrCollaboratorUnavailable)
}

func TestDirWildcardSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Colors.txt", "red\n")
	writeFile(t, dir, "styles/Painting.TXT", "oil\n")
	writeFile(t, dir, "notes.md", "ignored\n")
	writeFile(t, dir, ".git/config.txt", "hidden\n")

	got, err := (&DirWildcardSource{Dir: dir}).ListWildcards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Colors", "styles/Painting"}, got)

	got, err = (&DirWildcardSource{}).ListWildcards(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = (&DirWildcardSource{Dir: filepath.Join(dir, "nope")}).ListWildcards(context.Background())
	require.ErrorIs(t, err, richprompt.ErrCollaboratorUnavailable)
}

func TestRefresherKeepsPreviousListOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "colors.txt", "red\n")

	catalog := richprompt.NewCatalog(nil)
	tags := &switchableTags{names: []string{"styleA"}}
	r := NewRefresher(catalog, tags, dir, RefresherOptions{})

	require.NoError(t, r.Refresh(context.Background()))
	canonical, ok := catalog.Snapshot().Tag("STYLEA")
	require.True(t, ok)
	assert.Equal(t, "styleA", canonical)
	_, ok = catalog.Snapshot().Wildcard("Colors")
	assert.True(t, ok)

	tags.fail.Store(true)
	err := r.Refresh(context.Background())
	require.ErrorIs(t, err, richprompt.ErrCollaboratorUnavailable)
	_, ok = catalog.Snapshot().Tag("styleA")
	assert.True(t, ok, "failed fetch keeps the old list")

	r.SetWildcardDir(filepath.Join(dir, "missing"))
	assert.Error(t, r.Refresh(context.Background()))
	_, ok = catalog.Snapshot().Wildcard("colors")
	assert.True(t, ok)
}

func TestRefresherNotifiesOnPublish(t *testing.T) {
	dir := t.TempDir()
	tags := &switchableTags{names: []string{"styleA"}}
	var published atomic.Int32
	r := NewRefresher(richprompt.NewCatalog(nil), tags, dir, RefresherOptions{
		OnChange: func() { published.Add(1) },
	})

	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, int32(2), published.Load())

	tags.fail.Store(true)
	r.SetWildcardDir(filepath.Join(dir, "missing"))
	assert.Error(t, r.Refresh(context.Background()))
	assert.Equal(t, int32(2), published.Load(), "nothing published, nothing notified")
}

type switchableTags struct {
	names []string
	fail  atomic.Bool
}

func (s *switchableTags) FetchTags(context.Context) ([]string, error) {
	if s.fail.Load() {
		return nil, fmt.Errorf("%w: down", richprompt.ErrCollaboratorUnavailable)
	}
	return s.names, nil
}

func TestRefresherRunPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	catalog := richprompt.NewCatalog(nil)
	r := NewRefresher(catalog, nil, dir, RefresherOptions{
		Interval: 200 * time.Millisecond,
		Watch:    true,
		Debounce: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	writeFile(t, dir, "fresh.txt", "x\n")
	require.Eventually(t, func() bool {
		_, ok := catalog.Snapshot().Wildcard("fresh")
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	other := t.TempDir()
	writeFile(t, other, "elsewhere.txt", "y\n")
	r.SetWildcardDir(other)
	require.Eventually(t, func() bool {
		_, ok := catalog.Snapshot().Wildcard("elsewhere")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, other, r.WildcardDir())
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 50*time.Millisecond)
	require.NoError(t, err)
	changes, err := w.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	for i := 0; i < 5; i++ {
		writeFile(t, dir, "burst.txt", fmt.Sprint(i))
	}
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
	select {
	case <-changes:
		t.Fatal("burst produced more than one notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHTTPPreviewProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lm/loras/preview-url" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("name") {
		case "a b&c":
			_, _ = fmt.Fprint(w, `{"success":true,"preview_url":"x.png"}`)
		case "clip":
			_, _ = fmt.Fprint(w, `{"success":true,"preview_url":"/previews/clip.mp4"}`)
		case "still":
			_, _ = fmt.Fprint(w, `{"success":true,"preview_url":"https://cdn.example/still.png"}`)
		default:
			_, _ = fmt.Fprint(w, `{"success":false}`)
		}
	}))
	t.Cleanup(srv.Close)
	p := &HTTPPreviewProvider{BaseURL: srv.URL + "/"}
	ctx := context.Background()

	got, err := p.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetLoraTag, Identifier: "clip"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/previews/clip.mp4", got.URL)
	assert.True(t, got.Video)

	got, err = p.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetLoraTag, Identifier: "still"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/still.png", got.URL)
	assert.False(t, got.Video)

	got, err = p.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetLoraTag, Identifier: "a b&c"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/x.png", got.URL)

	_, err = p.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetLoraTag, Identifier: "unknown"})
	require.ErrorIs(t, err, richprompt.ErrNoPreview)

	_, err = p.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetWildcard, Identifier: "clip"})
	require.ErrorIs(t, err, richprompt.ErrNoPreview)
}

func TestWildcardPreviewProvider(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub/Colors.txt", "# header\nred\nblue # cold\n\ngreen\nblack\n")
	p := &WildcardPreviewProvider{Dir: func() string { return dir }, MaxLines: 3}
	ctx := context.Background()

	got, err := p.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetWildcard, Identifier: "sub/colors"})
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue", "green", "… 1 more"}, got.Lines)

	_, err = p.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetWildcard, Identifier: "missing"})
	require.ErrorIs(t, err, richprompt.ErrNoPreview)

	_, err = p.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetWildcard, Identifier: "../escape"})
	require.ErrorIs(t, err, richprompt.ErrDirectoryTraversal)
}

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (c *countingProvider) Preview(_ context.Context, t richprompt.HoverTarget) (richprompt.Preview, error) {
	c.calls.Add(1)
	if c.err != nil {
		return richprompt.Preview{}, c.err
	}
	return richprompt.Preview{Identifier: t.Identifier, URL: "u"}, nil
}

func TestCachedPreviewProvider(t *testing.T) {
	ctx := context.Background()
	target := richprompt.HoverTarget{Kind: richprompt.TargetLoraTag, Identifier: "Style"}

	next := &countingProvider{}
	c := NewCachedPreviewProvider(next, time.Minute)
	for i := 0; i < 3; i++ {
		got, err := c.Preview(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, "u", got.URL)
	}
	_, _ = c.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetLoraTag, Identifier: "STYLE"})
	assert.EqualValues(t, 1, next.calls.Load())

	c.Flush()
	_, _ = c.Preview(ctx, target)
	assert.EqualValues(t, 2, next.calls.Load())

	missing := &countingProvider{err: richprompt.ErrNoPreview}
	c = NewCachedPreviewProvider(missing, 0)
	for i := 0; i < 2; i++ {
		_, err := c.Preview(ctx, target)
		require.ErrorIs(t, err, richprompt.ErrNoPreview)
	}
	assert.EqualValues(t, 1, missing.calls.Load(), "absent previews are cached")

	down := &countingProvider{err: fmt.Errorf("%w: timeout", richprompt.ErrCollaboratorUnavailable)}
	c = NewCachedPreviewProvider(down, 0)
	for i := 0; i < 2; i++ {
		_, err := c.Preview(ctx, target)
		require.ErrorIs(t, err, richprompt.ErrCollaboratorUnavailable)
	}
	assert.EqualValues(t, 2, down.calls.Load(), "failures are retried")
}

func TestMultiPreviewProvider(t *testing.T) {
	tags, wildcards := &countingProvider{}, &countingProvider{}
	m := &MultiPreviewProvider{Tags: tags, Wildcards: wildcards}
	ctx := context.Background()

	_, _ = m.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetLoraTag})
	_, _ = m.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetWildcard})
	_, _ = m.Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetWildcard})
	assert.EqualValues(t, 1, tags.calls.Load())
	assert.EqualValues(t, 2, wildcards.calls.Load())

	_, err := (&MultiPreviewProvider{}).Preview(ctx, richprompt.HoverTarget{Kind: richprompt.TargetLoraTag})
	require.ErrorIs(t, err, richprompt.ErrNoPreview)
}
