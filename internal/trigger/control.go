// Package trigger implements the event replication reconciler: the business
// rules invoked once per committed transaction that keep every participant's
// shadow copy of a calendar event consistent with the owner copy.
package trigger

import (
	"context"
	"log/slog"

	"shadowcal/internal/model"
	"shadowcal/internal/presenter"
)

// Store is the read surface a trigger invocation needs. The sqlite document
// store satisfies it; tests use an in-memory fake.
type Store interface {
	Event(ctx context.Context, id model.Ref) (*model.Event, error)
	EventsByEventID(ctx context.Context, eventID string, exclude model.Ref) ([]model.Event, error)
	EventsByAttachedTo(ctx context.Context, attachedTo model.Ref) ([]model.Event, error)
	Calendar(ctx context.Context, id model.Ref) (*model.Calendar, error)
	CalendarsByModifier(ctx context.Context, account model.Ref) ([]model.Calendar, error)
	Account(ctx context.Context, id model.Ref) (*model.Account, error)
	AccountByPerson(ctx context.Context, person model.Ref) (*model.Account, error)
	Card(ctx context.Context, id model.Ref) (*model.Card, error)
}

// Snapshot holds the last known state of documents removed in the current
// trigger batch. The live store no longer has them by the time the removal
// trigger runs. Valid only for the duration of one batch.
type Snapshot map[model.Ref]*model.Event

// Control carries everything a trigger invocation may touch. It is built
// fresh per invocation; triggers hold no state of their own.
type Control struct {
	Store      Store
	Removed    Snapshot
	Presenters *presenter.Registry
	Logger     *slog.Logger
}

func (c Control) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Func is a transaction trigger: given one committed transaction it returns
// the derived transactions the host should apply. Not-found conditions yield
// an empty result; only store failures are returned as errors.
type Func func(ctx context.Context, ctl Control, tx model.Transaction) ([]model.Transaction, error)

// Registration binds a named trigger to the transactions it reacts to.
type Registration struct {
	Name  string
	Match func(tx model.Transaction) bool
	Fn    Func
}

// Registrations returns the trigger functions this module exposes to the
// host pipeline.
func Registrations() []Registration {
	return []Registration{
		{
			Name: "OnAccountCreate",
			Match: func(tx model.Transaction) bool {
				return tx.Kind == model.TxCreate && tx.ObjectClass == model.ClassAccount
			},
			Fn: OnAccountCreate,
		},
		{
			Name: "OnEventMutation",
			Match: func(tx model.Transaction) bool {
				return tx.ObjectClass == model.ClassEvent
			},
			Fn: OnEventMutation,
		},
	}
}
