package loaders

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/boolean-maybe/richprompt/internal/logger"
	"github.com/boolean-maybe/richprompt/richprompt"
)

// Refresher keeps a Catalog in sync with the tag and wildcard sources. Failed
// fetches are logged and keep the previous list; the editor never sees an error.
type Refresher struct {
	catalog  *richprompt.Catalog
	tags     TagSource
	interval time.Duration
	watch    bool
	debounce time.Duration
	onChange func()

	mu  sync.Mutex
	dir string

	trigger chan struct{}

	// only touched by Run
	watcher    *Watcher
	watchedDir string
	changes    <-chan struct{}
}

// RefresherOptions configures a Refresher.
type RefresherOptions struct {
	// Interval between periodic refreshes; zero disables them.
	Interval time.Duration
	// Watch enables the file system watcher on the wildcard directory.
	Watch bool
	// Debounce for watcher notifications; zero uses DefaultWatchDebounce.
	Debounce time.Duration
	// OnChange is called from Run's goroutine after a list was published.
	OnChange func()
}

// NewRefresher creates a refresher. tags may be nil.
func NewRefresher(catalog *richprompt.Catalog, tags TagSource, wildcardDir string, opts RefresherOptions) *Refresher {
	return &Refresher{
		catalog:  catalog,
		tags:     tags,
		interval: opts.Interval,
		watch:    opts.Watch,
		debounce: opts.Debounce,
		onChange: opts.OnChange,
		dir:      wildcardDir,
		trigger:  make(chan struct{}, 1),
	}
}

// WildcardDir returns the current wildcard directory.
func (r *Refresher) WildcardDir() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dir
}

// SetWildcardDir switches to another wildcard directory and requests a refresh.
func (r *Refresher) SetWildcardDir(dir string) {
	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()
	r.Trigger()
}

// Trigger requests an immediate refresh from Run. Requests made while one is
// pending are merged.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Refresh fetches both lists once and publishes them. A list whose fetch failed
// keeps its previous content. The returned error is informational.
func (r *Refresher) Refresh(ctx context.Context) error {
	return errors.Join(r.refreshTags(ctx), r.refreshWildcards(ctx))
}

func (r *Refresher) refreshTags(ctx context.Context) error {
	if r.tags == nil {
		return nil
	}
	names, err := r.tags.FetchTags(ctx)
	if err != nil {
		logger.L(ctx).Warn("tag list refresh failed", zap.Error(err))
		return err
	}
	r.catalog.UpdateTags(names)
	logger.L(ctx).Debug("tag list refreshed", zap.Int("count", len(names)))
	r.notify()
	return nil
}

func (r *Refresher) refreshWildcards(ctx context.Context) error {
	dir := r.WildcardDir()
	src := &DirWildcardSource{Dir: dir}
	names, err := src.ListWildcards(ctx)
	if err != nil {
		logger.L(ctx).Warn("wildcard index refresh failed", zap.String("dir", dir), zap.Error(err))
		return err
	}
	r.catalog.UpdateWildcards(names)
	logger.L(ctx).Debug("wildcard index refreshed", zap.String("dir", dir), zap.Int("count", len(names)))
	r.notify()
	return nil
}

func (r *Refresher) notify() {
	if r.onChange != nil {
		r.onChange()
	}
}

// Run refreshes immediately, then on every tick, trigger and (with Watch) file
// change until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	_ = r.Refresh(ctx)

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	changes := r.rewatch(ctx)
	defer r.stopWatching()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_ = r.Refresh(ctx)
		case <-r.trigger:
			changes = r.rewatch(ctx)
			_ = r.Refresh(ctx)
		case <-changes:
			_ = r.refreshWildcards(ctx)
		case err := <-r.watchErrors():
			logger.L(ctx).Warn("wildcard watcher error", zap.Error(err))
		}
	}
}

// rewatch points the watcher at the current directory. It returns the change
// channel, nil when not watching.
func (r *Refresher) rewatch(ctx context.Context) <-chan struct{} {
	dir := r.WildcardDir()
	if r.watcher != nil && dir == r.watchedDir {
		return r.changes
	}
	r.stopWatching()
	if !r.watch || dir == "" {
		return nil
	}

	w, err := NewWatcher(dir, r.debounce)
	if err != nil {
		logger.L(ctx).Warn("cannot create wildcard watcher", zap.Error(err))
		return nil
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		logger.L(ctx).Warn("cannot watch wildcard directory", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	r.watcher, r.watchedDir, r.changes = w, dir, changes
	return changes
}

func (r *Refresher) stopWatching() {
	if r.watcher == nil {
		return
	}
	_ = r.watcher.Stop()
	r.watcher, r.watchedDir, r.changes = nil, "", nil
}

func (r *Refresher) watchErrors() <-chan error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Errors()
}
