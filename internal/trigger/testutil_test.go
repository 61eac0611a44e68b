package trigger

import (
	"context"
	"time"

	"shadowcal/internal/model"
)

// fakeStore is an in-memory Store. Slices keep insertion order so query
// results are deterministic, like the sqlite store's explicit ORDER BY.
type fakeStore struct {
	events    []*model.Event
	calendars []*model.Calendar
	accounts  []*model.Account
	cards     []*model.Card
}

func (s *fakeStore) Event(_ context.Context, id model.Ref) (*model.Event, error) {
	for _, e := range s.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) EventsByEventID(_ context.Context, eventID string, exclude model.Ref) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.events {
		if e.EventID == eventID && e.ID != exclude {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeStore) EventsByAttachedTo(_ context.Context, attachedTo model.Ref) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.events {
		if e.AttachedTo == attachedTo {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeStore) Calendar(_ context.Context, id model.Ref) (*model.Calendar, error) {
	for _, c := range s.calendars {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CalendarsByModifier(_ context.Context, account model.Ref) ([]model.Calendar, error) {
	var out []model.Calendar
	for _, c := range s.calendars {
		if c.CreatedBy == account || c.ModifiedBy == account {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) Account(_ context.Context, id model.Ref) (*model.Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) AccountByPerson(_ context.Context, person model.Ref) (*model.Account, error) {
	for _, a := range s.accounts {
		if a.Person == person {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Card(_ context.Context, id model.Ref) (*model.Card, error) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) addAccount(person, account model.Ref, email string) {
	s.accounts = append(s.accounts, &model.Account{
		ID:     account,
		Person: person,
		Email:  email,
	})
}

func (s *fakeStore) addCalendar(id, owner model.Ref, isDefault bool, createdAt time.Time) {
	s.calendars = append(s.calendars, &model.Calendar{
		ID:         id,
		Name:       string(id),
		Default:    isDefault,
		Visibility: model.VisibilityPublic,
		CreatedBy:  owner,
		ModifiedBy: owner,
		CreatedAt:  createdAt,
		ModifiedAt: createdAt,
	})
}

func (s *fakeStore) addEvent(e *model.Event) {
	s.events = append(s.events, e)
}

var baseTime = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

func ownerEvent(id model.Ref, eventID string, calendar, owner model.Ref, participants ...model.Ref) *model.Event {
	return &model.Event{
		ID:              id,
		EventID:         eventID,
		Calendar:        calendar,
		Access:          model.AccessOwner,
		Title:           "Design review",
		Description:     "Quarterly review",
		StartTime:       baseTime,
		EndTime:         baseTime.Add(time.Hour),
		Visibility:      model.VisibilityPublic,
		Participants:    participants,
		AttachedTo:      "card-1",
		AttachedToClass: model.ClassCard,
		Collection:      "events",
		CreatedBy:       owner,
		ModifiedBy:      owner,
		CreatedAt:       baseTime,
		ModifiedAt:      baseTime,
	}
}

func readerEvent(id model.Ref, eventID string, calendar, holder model.Ref, participants ...model.Ref) *model.Event {
	e := ownerEvent(id, eventID, calendar, holder, participants...)
	e.Access = model.AccessReader
	return e
}

// threePeople wires owner, A and B: persons, accounts and one calendar each.
func threePeople(s *fakeStore) {
	s.addAccount("person-owner", "acct-owner", "owner@example.com")
	s.addAccount("person-a", "acct-a", "a@example.com")
	s.addAccount("person-b", "acct-b", "b@example.com")
	s.addCalendar("cal-owner", "acct-owner", false, baseTime)
	s.addCalendar("cal-a", "acct-a", false, baseTime)
	s.addCalendar("cal-b", "acct-b", false, baseTime)
}

func control(s *fakeStore) Control {
	return Control{Store: s, Removed: Snapshot{}}
}
