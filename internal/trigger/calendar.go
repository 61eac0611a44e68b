package trigger

import (
	"context"

	"shadowcal/internal/model"
)

// SelectCalendar chooses the replication target among the calendars created
// or last modified by the given account. A calendar flagged as the default
// external calendar wins; otherwise the earliest-created calendar does (the
// store orders by creation time, then id). Returns nil when the account has
// no calendar, which makes the participant unreachable and skipped.
func SelectCalendar(ctx context.Context, ctl Control, account model.Ref) (*model.Calendar, error) {
	calendars, err := ctl.Store.CalendarsByModifier(ctx, account)
	if err != nil {
		return nil, err
	}
	if len(calendars) == 0 {
		return nil, nil
	}

	for i := range calendars {
		if calendars[i].Default {
			return &calendars[i], nil
		}
	}
	return &calendars[0], nil
}
