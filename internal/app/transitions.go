package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"petlink/internal/util"
)

// Event is a state change that triggers remote synchronization.
type Event int

const (
	EventSessionStarted Event = iota
	EventSessionEnded
	EventFiltersChanged
	EventSelectionChanged
)

func (e Event) String() string {
	switch e {
	case EventSessionStarted:
		return "session_started"
	case EventSessionEnded:
		return "session_ended"
	case EventFiltersChanged:
		return "filters_changed"
	case EventSelectionChanged:
		return "selection_changed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

type effect func(ctx context.Context, a *App) error

var transitions = map[Event]effect{
	EventSessionStarted: func(ctx context.Context, a *App) error {
		// Independent effects; a failed rehydration must not cancel the listing.
		var g errgroup.Group
		g.Go(func() error { return a.RehydrateProfile(ctx) })
		g.Go(func() error { return a.refreshOrders(ctx) })
		return g.Wait()
	},
	EventSessionEnded: func(_ context.Context, a *App) error {
		a.resetCaches()
		return nil
	},
	EventFiltersChanged: func(ctx context.Context, a *App) error {
		return a.refreshOrders(ctx)
	},
	EventSelectionChanged: func(ctx context.Context, a *App) error {
		return a.loadMessages(ctx)
	},
}

func (a *App) dispatch(ctx context.Context, ev Event) error {
	fx, ok := transitions[ev]
	if !ok {
		return fmt.Errorf("no transition for %s", ev)
	}
	util.LoggerFromContext(ctx).Debug("transition", "event", ev.String())
	return fx(ctx, a)
}

// resetCaches drops every per-user cache and invalidates in-flight fetches.
func (a *App) resetCaches() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orders = nil
	a.messages = nil
	a.selected = nil
	a.filters = defaultFilters()
	a.forms = Forms{}
	a.orderGen++
	a.msgGen++
}
