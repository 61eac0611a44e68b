package trigger

import (
	"context"
	"time"

	"shadowcal/internal/model"
)

// OnAccountCreate reacts to a new account by emitting the creation of its
// personal calendar. The calendar id is derived from the account id, so a
// replayed transaction produces a duplicate-key conflict instead of a second
// calendar.
func OnAccountCreate(ctx context.Context, ctl Control, tx model.Transaction) ([]model.Transaction, error) {
	acc, ok := tx.AccountPayload()
	if !ok {
		return nil, nil
	}

	now := time.Now().UTC()
	cal := &model.Calendar{
		ID:         model.PersonalCalendarID(acc.ID),
		Name:       acc.Email,
		Hidden:     false,
		Visibility: model.VisibilityPublic,
		CreatedBy:  acc.ID,
		ModifiedBy: acc.ID,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	return []model.Transaction{
		model.NewCreateTx(acc.ID, cal.ID, model.ClassCalendar, cal),
	}, nil
}
