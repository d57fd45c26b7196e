package richprompt

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Duration
	f        func()
	stopped  bool
	fired    bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.clock.ignoreStop {
		return false
	}
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock fires timers only when advanced. ignoreStop simulates a timer that
// had already started firing when it was stopped.
type fakeClock struct {
	mu         sync.Mutex
	now        time.Duration
	timers     []*fakeTimer
	ignoreStop bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.deadline <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type sinkCall struct {
	op     string
	target HoverTarget
	x, y   int
}

type recordingSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (s *recordingSink) Show(target HoverTarget, x, y int) {
	s.record(sinkCall{op: "show", target: target, x: x, y: y})
}

func (s *recordingSink) Move(x, y int) { s.record(sinkCall{op: "move", x: x, y: y}) }

func (s *recordingSink) Hide() { s.record(sinkCall{op: "hide"}) }

func (s *recordingSink) record(c sinkCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *recordingSink) ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.op)
	}
	return out
}

var (
	targetA = HoverTarget{Kind: TargetLoraTag, Identifier: "a", Start: 0, End: 8, Resolved: true}
	targetB = HoverTarget{Kind: TargetWildcard, Identifier: "b", Start: 10, End: 15, Resolved: true}
)

func newTestScheduler() (*PreviewScheduler, *fakeClock, *recordingSink) {
	clock := &fakeClock{}
	sink := &recordingSink{}
	return NewPreviewScheduler(clock, time.Second, sink), clock, sink
}

func TestPreviewScheduler_ShowsOnceAfterDelay(t *testing.T) {
	s, clock, sink := newTestScheduler()

	s.Update(targetA, true, 1, 1)
	clock.Advance(999 * time.Millisecond)
	s.Update(targetA, true, 2, 1)
	assert.Empty(t, sink.ops())
	assert.False(t, s.Visible())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"show"}, sink.ops())
	assert.Equal(t, sinkCall{op: "show", target: targetA, x: 2, y: 1}, sink.calls[0])

	clock.Advance(5 * time.Second)
	assert.Equal(t, []string{"show"}, sink.ops())
	assert.True(t, s.Visible())
}

func TestPreviewScheduler_LeavingTargetCancels(t *testing.T) {
	s, clock, sink := newTestScheduler()

	s.Update(targetA, true, 1, 1)
	clock.Advance(500 * time.Millisecond)
	s.Update(HoverTarget{}, false, 5, 5)
	clock.Advance(2 * time.Second)

	assert.Empty(t, sink.ops())
	_, has := s.Target()
	assert.False(t, has)
}

func TestPreviewScheduler_NewTargetRestartsDelay(t *testing.T) {
	s, clock, sink := newTestScheduler()

	s.Update(targetA, true, 1, 1)
	clock.Advance(600 * time.Millisecond)
	s.Update(targetB, true, 12, 1)
	clock.Advance(600 * time.Millisecond)
	assert.Empty(t, sink.ops())

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, []string{"show"}, sink.ops())
	assert.Equal(t, targetB, sink.calls[0].target)
}

func TestPreviewScheduler_VisibleSameTargetMoves(t *testing.T) {
	s, clock, sink := newTestScheduler()

	s.Update(targetA, true, 1, 1)
	clock.Advance(time.Second)
	s.Update(targetA, true, 3, 1)
	s.Update(targetA, true, 4, 1)

	assert.Equal(t, []string{"show", "move", "move"}, sink.ops())
	assert.Equal(t, 4, sink.calls[2].x)
}

func TestPreviewScheduler_VisibleOtherTargetHides(t *testing.T) {
	s, clock, sink := newTestScheduler()

	s.Update(targetA, true, 1, 1)
	clock.Advance(time.Second)
	s.Update(targetB, true, 12, 1)

	assert.Equal(t, []string{"show", "hide"}, sink.ops())
	assert.False(t, s.Visible())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"show", "hide", "show"}, sink.ops())
}

func TestPreviewScheduler_LeaveHidesImmediately(t *testing.T) {
	s, clock, sink := newTestScheduler()

	s.Update(targetA, true, 1, 1)
	clock.Advance(time.Second)
	s.Leave()

	assert.Equal(t, []string{"show", "hide"}, sink.ops())

	// leaving again is harmless
	s.Leave()
	assert.Equal(t, []string{"show", "hide"}, sink.ops())
}

func TestPreviewScheduler_StaleTimerDoesNothing(t *testing.T) {
	s, clock, sink := newTestScheduler()
	clock.ignoreStop = true

	s.Update(targetA, true, 1, 1)
	s.Leave()
	clock.Advance(time.Second)

	assert.Empty(t, sink.ops())
}

// gatedSink blocks inside Show until the gate is closed.
type gatedSink struct {
	recordingSink
	entered chan struct{}
	gate    chan struct{}
}

func (s *gatedSink) Show(target HoverTarget, x, y int) {
	close(s.entered)
	<-s.gate
	s.recordingSink.Show(target, x, y)
}

func TestPreviewScheduler_HideDuringShowIsDeliveredAfterIt(t *testing.T) {
	clock := &fakeClock{}
	sink := &gatedSink{entered: make(chan struct{}), gate: make(chan struct{})}
	s := NewPreviewScheduler(clock, time.Second, sink)

	s.Update(targetA, true, 1, 1)
	fired := make(chan struct{})
	go func() {
		clock.Advance(time.Second)
		close(fired)
	}()
	<-sink.entered

	left := make(chan struct{})
	go func() {
		s.Update(HoverTarget{}, false, 9, 9)
		close(left)
	}()
	require.Eventually(t, func() bool { return !s.Visible() }, time.Second, time.Millisecond)

	close(sink.gate)
	<-fired
	<-left

	assert.Equal(t, []string{"show", "hide"}, sink.ops())
	assert.False(t, s.Visible())

	// the preview stays hidden and nothing more reaches the sink
	s.Update(HoverTarget{}, false, 10, 10)
	clock.Advance(5 * time.Second)
	assert.Equal(t, []string{"show", "hide"}, sink.ops())
}

func TestIsVideoURL(t *testing.T) {
	assert.True(t, IsVideoURL("http://host/clip.MP4"))
	assert.True(t, IsVideoURL("http://host/previews/clip.mp4?v=2"))
	assert.False(t, IsVideoURL("http://host/previews/clip.png"))
	assert.False(t, IsVideoURL(""))
}
