package trigger

import (
	"context"

	"shadowcal/internal/model"
)

// Reminders returns all events attached to the given document. No business
// logic, just the filtered read the host exposes alongside the triggers.
func Reminders(ctx context.Context, ctl Control, objectID model.Ref) ([]model.Event, error) {
	return ctl.Store.EventsByAttachedTo(ctx, objectID)
}

// EventHTML renders the event against the record it is attached to using the
// registered presenter for that record's class. Returns "" when the target
// record or presenter does not exist.
func EventHTML(ctx context.Context, ctl Control, ev *model.Event) (string, error) {
	return present(ctx, ctl, ev, true)
}

// EventText is EventHTML's plain-text counterpart.
func EventText(ctx context.Context, ctl Control, ev *model.Event) (string, error) {
	return present(ctx, ctl, ev, false)
}

func present(ctx context.Context, ctl Control, ev *model.Event, wantHTML bool) (string, error) {
	if ev.AttachedTo == "" || ctl.Presenters == nil {
		return "", nil
	}

	p, ok := ctl.Presenters.Lookup(ev.AttachedToClass)
	if !ok {
		return "", nil
	}

	target, err := ctl.Store.Card(ctx, ev.AttachedTo)
	if err != nil {
		return "", err
	}
	if target == nil {
		return "", nil
	}

	if wantHTML {
		return p.HTML(target, ev)
	}
	return p.Text(target, ev)
}

// ReadFunc is a host-exposed read-only function over a single document.
type ReadFunc func(ctx context.Context, ctl Control, id model.Ref) (any, error)

// ReadFunctions returns the named pure/read functions this module exposes to
// the host, keyed the way the host resolves them.
func ReadFunctions() map[string]ReadFunc {
	return map[string]ReadFunc{
		"Reminders": func(ctx context.Context, ctl Control, id model.Ref) (any, error) {
			return Reminders(ctx, ctl, id)
		},
		"EventHTML": func(ctx context.Context, ctl Control, id model.Ref) (any, error) {
			ev, err := ctl.Store.Event(ctx, id)
			if err != nil || ev == nil {
				return "", err
			}
			return EventHTML(ctx, ctl, ev)
		},
		"EventText": func(ctx context.Context, ctl Control, id model.Ref) (any, error) {
			ev, err := ctl.Store.Event(ctx, id)
			if err != nil || ev == nil {
				return "", err
			}
			return EventText(ctx, ctl, ev)
		},
	}
}
