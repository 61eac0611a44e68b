package trigger

import (
	"context"
	"time"

	"shadowcal/internal/model"
)

// OnEventMutation reconciles participant shadow copies after any committed
// event transaction.
func OnEventMutation(ctx context.Context, ctl Control, tx model.Transaction) ([]model.Transaction, error) {
	switch tx.Kind {
	case model.TxCreate:
		return onEventCreate(ctx, ctl, tx)
	case model.TxUpdate:
		return onEventUpdate(ctx, ctl, tx)
	case model.TxRemove:
		return onEventRemove(ctx, ctl, tx)
	default:
		return nil, nil
	}
}

// onEventCreate replicates a freshly created owner event into every other
// participant's calendar. Reader copies created this way re-enter the
// pipeline but terminate here on the access check.
func onEventCreate(ctx context.Context, ctl Control, tx model.Transaction) ([]model.Transaction, error) {
	ev, ok := tx.EventPayload()
	if !ok || ev.Access != model.AccessOwner {
		return nil, nil
	}

	actorPerson, err := personOf(ctx, ctl, tx.Actor)
	if err != nil {
		return nil, err
	}

	return replicate(ctx, ctl, ev, ev.Participants, actorPerson)
}

// onEventUpdate propagates an owner edit to every existing reader copy,
// removes copies whose holders left the participant set, and creates copies
// for newly added participants.
func onEventUpdate(ctx context.Context, ctl Control, tx model.Transaction) ([]model.Transaction, error) {
	ops := propagatedOps(tx.Operations)
	if len(ops) == 0 {
		// Visibility is local per copy; an edit touching nothing else has
		// nothing to propagate.
		return nil, nil
	}

	current, err := ctl.Store.Event(ctx, tx.ObjectID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Access != model.AccessOwner {
		return nil, nil
	}

	copies, err := ctl.Store.EventsByEventID(ctx, current.EventID, current.ID)
	if err != nil {
		return nil, err
	}

	actorPerson, err := personOf(ctx, ctl, tx.Actor)
	if err != nil {
		return nil, err
	}

	// Participants still waiting for a copy. The actor edits the owner copy
	// directly and never receives a transaction for it.
	uncovered := make(map[model.Ref]bool, len(current.Participants))
	for _, p := range current.Participants {
		if p != actorPerson {
			uncovered[p] = true
		}
	}

	var out []model.Transaction
	for i := range copies {
		holder, err := holderOf(ctx, ctl, &copies[i])
		if err != nil {
			return nil, err
		}
		if holder == nil {
			ctl.logger().Debug("copy holder unresolved, skipping",
				"event", copies[i].ID, "calendar", copies[i].Calendar)
			continue
		}
		if holder.Person == actorPerson {
			delete(uncovered, holder.Person)
			continue
		}

		if !current.HasParticipant(holder.Person) {
			out = append(out, model.NewRemoveTx(holder.ID, copies[i].ID, model.ClassEvent))
			continue
		}

		out = append(out, model.NewUpdateTx(holder.ID, copies[i].ID, model.ClassEvent, ops))
		delete(uncovered, holder.Person)
	}

	// Whoever is left has no copy yet: route through the creation path, in
	// participant-set order so the output is deterministic.
	var added []model.Ref
	for _, p := range current.Participants {
		if uncovered[p] {
			added = append(added, p)
		}
	}
	created, err := replicate(ctx, ctl, current, added, actorPerson)
	if err != nil {
		return nil, err
	}
	return append(out, created...), nil
}

// onEventRemove cascades an owner removal to every sibling copy. The removed
// document itself is gone from the store and comes from the batch snapshot.
func onEventRemove(ctx context.Context, ctl Control, tx model.Transaction) ([]model.Transaction, error) {
	ev := ctl.Removed[tx.ObjectID]
	if ev == nil || ev.Access != model.AccessOwner {
		return nil, nil
	}

	copies, err := ctl.Store.EventsByEventID(ctx, ev.EventID, ev.ID)
	if err != nil {
		return nil, err
	}

	out := make([]model.Transaction, 0, len(copies))
	for i := range copies {
		out = append(out, model.NewRemoveTx(copies[i].CreatedBy, copies[i].ID, model.ClassEvent))
	}
	return out, nil
}

// replicate emits a reader-copy creation for each listed person, skipping the
// excluded person and anyone without a resolvable account or calendar.
func replicate(ctx context.Context, ctl Control, src *model.Event, persons []model.Ref, exclude model.Ref) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, person := range persons {
		if person == exclude {
			continue
		}

		acc, err := ctl.Store.AccountByPerson(ctx, person)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			ctl.logger().Debug("participant has no account, skipping", "person", person)
			continue
		}

		cal, err := SelectCalendar(ctx, ctl, acc.ID)
		if err != nil {
			return nil, err
		}
		if cal == nil {
			ctl.logger().Debug("participant has no calendar, skipping", "person", person, "account", acc.ID)
			continue
		}

		copyEv := readerCopy(src, cal.ID, acc.ID)
		out = append(out, model.NewCollectionCreateTx(acc.ID, copyEv))
	}
	return out, nil
}

// readerCopy clones the owner event's data into a reader copy held in the
// given calendar, attributed to the holder's account. The logical event id
// and the attachment context are shared; identity fields are not.
func readerCopy(src *model.Event, calendar, account model.Ref) *model.Event {
	now := time.Now().UTC()
	return &model.Event{
		ID:              model.NewRef(),
		EventID:         src.EventID,
		Calendar:        calendar,
		Access:          model.AccessReader,
		Title:           src.Title,
		Description:     src.Description,
		Location:        src.Location,
		StartTime:       src.StartTime,
		EndTime:         src.EndTime,
		AllDay:          src.AllDay,
		Visibility:      src.Visibility,
		Participants:    append([]model.Ref(nil), src.Participants...),
		AttachedTo:      src.AttachedTo,
		AttachedToClass: src.AttachedToClass,
		Collection:      src.Collection,
		CreatedBy:       account,
		ModifiedBy:      account,
		CreatedAt:       now,
		ModifiedAt:      now,
	}
}

// propagatedOps strips visibility from an update's field set.
func propagatedOps(ops map[string]any) map[string]any {
	if len(ops) == 0 {
		return nil
	}
	out := make(map[string]any, len(ops))
	for k, v := range ops {
		if k == "visibility" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// personOf resolves the person behind an account reference. Returns "" when
// the account is unknown.
func personOf(ctx context.Context, ctl Control, account model.Ref) (model.Ref, error) {
	acc, err := ctl.Store.Account(ctx, account)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", nil
	}
	return acc.Person, nil
}

// holderOf resolves the account holding an event copy via its calendar's
// ownership. Returns nil when the calendar or its owner cannot be resolved.
func holderOf(ctx context.Context, ctl Control, ev *model.Event) (*model.Account, error) {
	cal, err := ctl.Store.Calendar(ctx, ev.Calendar)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, nil
	}
	return ctl.Store.Account(ctx, cal.CreatedBy)
}
