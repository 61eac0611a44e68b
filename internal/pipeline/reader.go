package pipeline

import (
	"context"

	"shadowcal/internal/model"
	"shadowcal/internal/store"
)

// Reader adapts the typed sqlite stores to the trigger read surface.
type Reader struct {
	Events    *store.EventStore
	Calendars *store.CalendarStore
	Accounts  *store.AccountStore
	Cards     *store.CardStore
}

func (r *Reader) Event(ctx context.Context, id model.Ref) (*model.Event, error) {
	return r.Events.GetByID(ctx, id)
}

func (r *Reader) EventsByEventID(ctx context.Context, eventID string, exclude model.Ref) ([]model.Event, error) {
	return r.Events.ByEventID(ctx, eventID, exclude)
}

func (r *Reader) EventsByAttachedTo(ctx context.Context, attachedTo model.Ref) ([]model.Event, error) {
	return r.Events.ByAttachedTo(ctx, attachedTo)
}

func (r *Reader) Calendar(ctx context.Context, id model.Ref) (*model.Calendar, error) {
	return r.Calendars.GetByID(ctx, id)
}

func (r *Reader) CalendarsByModifier(ctx context.Context, account model.Ref) ([]model.Calendar, error) {
	return r.Calendars.ByModifier(ctx, account)
}

func (r *Reader) Account(ctx context.Context, id model.Ref) (*model.Account, error) {
	return r.Accounts.GetByID(ctx, id)
}

func (r *Reader) AccountByPerson(ctx context.Context, person model.Ref) (*model.Account, error) {
	return r.Accounts.ByPerson(ctx, person)
}

func (r *Reader) Card(ctx context.Context, id model.Ref) (*model.Card, error) {
	return r.Cards.GetByID(ctx, id)
}
