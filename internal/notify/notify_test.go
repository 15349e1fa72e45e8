package notify

import (
	"sort"
	"sync"
	"testing"
	"time"
)

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves time forward and fires due timers in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestErrorToastVisibleForFourSeconds(t *testing.T) {
	clock := newManualClock()
	n := New(WithClock(clock))
	rec := &recorder{}
	n.Subscribe(rec.record)

	n.Error("Failed to delete order")
	clock.Advance(3999 * time.Millisecond)
	if toast, ok := n.Current(); !ok || toast.Message != "Failed to delete order" {
		t.Fatalf("toast should still be visible at 3999ms, got %+v ok=%v", toast, ok)
	}
	clock.Advance(time.Millisecond)
	if _, ok := n.Current(); ok {
		t.Fatalf("toast should be cleared at 4000ms")
	}
	clock.Advance(10 * time.Second)
	if got := rec.count(Cleared); got != 1 {
		t.Fatalf("expected exactly one clear, got %d", got)
	}
}

func TestNewToastReplacesAndCancelsPriorExpiry(t *testing.T) {
	clock := newManualClock()
	n := New(WithClock(clock))
	rec := &recorder{}
	n.Subscribe(rec.record)

	n.Error("first")
	clock.Advance(3 * time.Second)
	n.Error("second")
	if clock.pending() != 1 {
		t.Fatalf("expected a single pending expiry, got %d", clock.pending())
	}

	// The first toast's deadline passes; the second must survive it.
	clock.Advance(1500 * time.Millisecond)
	if toast, ok := n.Current(); !ok || toast.Message != "second" {
		t.Fatalf("second toast should remain visible, got %+v ok=%v", toast, ok)
	}
	clock.Advance(2500 * time.Millisecond)
	if _, ok := n.Current(); ok {
		t.Fatalf("second toast should expire 4s after it was shown")
	}
	if got := rec.count(Cleared); got != 1 {
		t.Fatalf("expected one clear for the visible toast, got %d", got)
	}
	if got := rec.count(Shown); got != 2 {
		t.Fatalf("expected two shown events, got %d", got)
	}
}

func TestRapidRepeatedTriggersClearOnce(t *testing.T) {
	clock := newManualClock()
	n := New(WithClock(clock))
	rec := &recorder{}
	n.Subscribe(rec.record)

	for i := 0; i < 10; i++ {
		n.Error("boom")
		clock.Advance(100 * time.Millisecond)
	}
	clock.Advance(time.Minute)
	if got := rec.count(Cleared); got != 1 {
		t.Fatalf("expected exactly one clear, got %d", got)
	}
}

func TestSeverityDurations(t *testing.T) {
	if Duration(Success) != 2500*time.Millisecond {
		t.Fatalf("unexpected success duration %v", Duration(Success))
	}
	if Duration(Warning) != 3*time.Second {
		t.Fatalf("unexpected warning duration %v", Duration(Warning))
	}
	if Duration(Error) != 4*time.Second {
		t.Fatalf("unexpected error duration %v", Duration(Error))
	}

	clock := newManualClock()
	n := New(WithClock(clock))
	n.Success("saved")
	clock.Advance(2499 * time.Millisecond)
	if _, ok := n.Current(); !ok {
		t.Fatalf("success toast should be visible before 2.5s")
	}
	clock.Advance(time.Millisecond)
	if _, ok := n.Current(); ok {
		t.Fatalf("success toast should clear at 2.5s")
	}
}

func TestDismiss(t *testing.T) {
	clock := newManualClock()
	n := New(WithClock(clock))
	rec := &recorder{}
	n.Subscribe(rec.record)

	n.Warning("careful")
	n.Dismiss()
	n.Dismiss()
	clock.Advance(time.Minute)
	if got := rec.count(Cleared); got != 1 {
		t.Fatalf("expected one clear after dismiss, got %d", got)
	}
}
