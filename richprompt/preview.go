package richprompt

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"
)

// DefaultPreviewDelay is how long the pointer has to rest on a token before its
// preview appears.
const DefaultPreviewDelay = time.Second

// Preview is what a PreviewProvider found for a target.
type Preview struct {
	Identifier string
	URL        string
	Video      bool
	// Lines holds a text excerpt (wildcard files) when there is no media.
	Lines []string
}

// PreviewProvider fetches previews. Implementations return ErrNoPreview when the
// target has none and ErrCollaboratorUnavailable when they could not ask.
type PreviewProvider interface {
	Preview(ctx context.Context, target HoverTarget) (Preview, error)
}

// IsVideoURL reports whether a preview URL points at an mp4 clip.
func IsVideoURL(raw string) bool {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".mp4")
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

// PreviewSink displays previews. Show, Move and Hide are called without the
// scheduler's lock held, Show from the timer's goroutine.
type PreviewSink interface {
	Show(target HoverTarget, x, y int)
	Move(x, y int)
	Hide()
}

// PreviewScheduler debounces hover targets into preview show/move/hide calls.
//
// A new target starts the delay; the preview shows once the pointer has stayed
// on that target for the whole delay. While it is visible, motion over the same
// target only moves it. Any other target, no target, or leaving the surface
// cancels the pending timer and hides the preview. Every scheduled timer carries
// a generation number, so a timer that fires after being superseded does nothing.
//
// Sink calls are serialized by their own lock, and a show is only delivered while
// its generation is still current, so the sink always sees them in state order.
type PreviewScheduler struct {
	sinkMu sync.Mutex

	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	sink    PreviewSink
	gen     uint64
	timer   Timer
	target  HoverTarget
	has     bool
	visible bool
	x, y    int
}

// NewPreviewScheduler creates a scheduler. A nil clock means RealClock, a
// non-positive delay DefaultPreviewDelay.
func NewPreviewScheduler(clock Clock, delay time.Duration, sink PreviewSink) *PreviewScheduler {
	if clock == nil {
		clock = RealClock()
	}
	if delay <= 0 {
		delay = DefaultPreviewDelay
	}
	return &PreviewScheduler{clock: clock, delay: delay, sink: sink}
}

// Update feeds the latest hover resolution at pointer (x, y).
func (s *PreviewScheduler) Update(target HoverTarget, ok bool, x, y int) {
	s.mu.Lock()
	if !ok {
		hide := s.resetLocked()
		s.mu.Unlock()
		s.notifyHide(hide)
		return
	}

	s.x, s.y = x, y
	if s.has && s.target.Same(target) {
		gen := s.gen
		s.mu.Unlock()
		s.notifyMove(gen, x, y)
		return
	}

	hide := s.resetLocked()
	s.target, s.has = target, true
	gen := s.gen
	s.mu.Unlock()
	s.notifyHide(hide)

	// scheduled after the hide so the new show can never overtake it
	s.mu.Lock()
	if gen == s.gen {
		s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
	}
	s.mu.Unlock()
}

// Leave is called when the pointer leaves the editing surface.
func (s *PreviewScheduler) Leave() {
	s.mu.Lock()
	hide := s.resetLocked()
	s.mu.Unlock()
	s.notifyHide(hide)
}

// Visible reports whether a preview is showing.
func (s *PreviewScheduler) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Target returns the target being tracked, pending or shown.
func (s *PreviewScheduler) Target() (HoverTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.has
}

func (s *PreviewScheduler) fire(gen uint64) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	s.mu.Lock()
	if gen != s.gen || !s.has || s.visible {
		s.mu.Unlock()
		return
	}
	s.visible = true
	s.timer = nil
	target, x, y := s.target, s.x, s.y
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Show(target, x, y)
	}
}

// resetLocked cancels any pending timer, forgets the target and reports whether
// a visible preview needs hiding.
func (s *PreviewScheduler) resetLocked() bool {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	wasVisible := s.visible
	s.visible = false
	s.has = false
	s.target = HoverTarget{}
	return wasVisible
}

func (s *PreviewScheduler) notifyHide(hide bool) {
	if !hide || s.sink == nil {
		return
	}
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	s.sink.Hide()
}

// notifyMove moves the preview if generation gen is still the visible one.
func (s *PreviewScheduler) notifyMove(gen uint64, x, y int) {
	if s.sink == nil {
		return
	}
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	s.mu.Lock()
	current := gen == s.gen && s.visible
	s.mu.Unlock()
	if current {
		s.sink.Move(x, y)
	}
}
