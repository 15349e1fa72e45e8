// Package notify holds the single transient toast shown to the user.
// A new toast replaces the visible one and cancels its expiry, so each
// toast is cleared at most once.
package notify

import (
	"sync"
	"time"
)

type Severity string

const (
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Duration returns how long a toast of severity s stays visible.
func Duration(s Severity) time.Duration {
	switch s {
	case Success:
		return 2500 * time.Millisecond
	case Warning:
		return 3 * time.Second
	default:
		return 4 * time.Second
	}
}

// Toast is one user-facing notification.
type Toast struct {
	ID       uint64
	Message  string
	Severity Severity
	ShownAt  time.Time
}

type EventKind int

const (
	Shown EventKind = iota
	Cleared
)

// Event is delivered to subscribers when a toast appears or goes away.
type Event struct {
	Kind  EventKind
	Toast Toast
}

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules expiries. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Notifier keeps at most one visible toast.
type Notifier struct {
	mu        sync.Mutex
	clock     Clock
	current   *Toast
	timer     Timer
	seq       uint64
	listeners []func(Event)
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(n *Notifier) {
		if c != nil {
			n.clock = c
		}
	}
}

// New builds a notifier backed by the wall clock unless overridden.
func New(opts ...Option) *Notifier {
	n := &Notifier{clock: realClock{}}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers fn for every Shown and Cleared event. fn runs
// outside the notifier lock and may be called from timer goroutines.
func (n *Notifier) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

func (n *Notifier) Success(msg string) { n.Show(Success, msg) }
func (n *Notifier) Warning(msg string) { n.Show(Warning, msg) }
func (n *Notifier) Error(msg string)   { n.Show(Error, msg) }

// Show replaces the visible toast and schedules its expiry.
func (n *Notifier) Show(sev Severity, msg string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.seq++
	id := n.seq
	toast := Toast{ID: id, Message: msg, Severity: sev, ShownAt: n.clock.Now()}
	n.current = &toast
	n.timer = n.clock.AfterFunc(Duration(sev), func() { n.expire(id) })
	listeners := n.snapshotListeners()
	n.mu.Unlock()

	emit(listeners, Event{Kind: Shown, Toast: toast})
}

// Current returns the visible toast, if any.
func (n *Notifier) Current() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Toast{}, false
	}
	return *n.current, true
}

// Dismiss clears the visible toast early.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.current == nil {
		n.mu.Unlock()
		return
	}
	id := n.current.ID
	n.mu.Unlock()
	n.expire(id)
}

func (n *Notifier) expire(id uint64) {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return
	}
	toast := *n.current
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	listeners := n.snapshotListeners()
	n.mu.Unlock()

	emit(listeners, Event{Kind: Cleared, Toast: toast})
}

func (n *Notifier) snapshotListeners() []func(Event) {
	out := make([]func(Event), len(n.listeners))
	copy(out, n.listeners)
	return out
}

func emit(listeners []func(Event), ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
