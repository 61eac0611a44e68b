package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shadowcal/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `id, event_id, calendar_id, access, title, description, location,
	start_time, end_time, all_day, visibility, participants,
	attached_to, attached_to_class, collection,
	created_by, modified_by, created_at, modified_at`

func (s *EventStore) Create(ctx context.Context, e *model.Event) error {
	participants, err := json.Marshal(e.Participants)
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}

	var allDayInt int
	if e.AllDay {
		allDayInt = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.EventID, e.Calendar, e.Access, e.Title, e.Description, e.Location,
		e.StartTime.UTC(), e.EndTime.UTC(), allDayInt, e.Visibility, string(participants),
		e.AttachedTo, e.AttachedToClass, e.Collection,
		e.CreatedBy, e.ModifiedBy, e.CreatedAt.UTC(), e.ModifiedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *EventStore) GetByID(ctx context.Context, id model.Ref) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// ByEventID returns all copies sharing the logical event id, excluding the
// given document id (pass "" to exclude nothing). Order is stable: creation
// time, then id.
func (s *EventStore) ByEventID(ctx context.Context, eventID string, exclude model.Ref) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE event_id = ? AND id != ?
		 ORDER BY created_at ASC, id ASC`,
		eventID, exclude)
	if err != nil {
		return nil, fmt.Errorf("query events by event_id: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ByAttachedTo returns all events attached to the given parent document.
func (s *EventStore) ByAttachedTo(ctx context.Context, attachedTo model.Ref) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE attached_to = ?
		 ORDER BY start_time ASC, id ASC`,
		attachedTo)
	if err != nil {
		return nil, fmt.Errorf("query events by attached_to: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ByCalendars returns all events held in any of the given calendars
// (set-membership filter). A zero limit means no limit.
func (s *EventStore) ByCalendars(ctx context.Context, calendars []model.Ref, limit int) ([]model.Event, error) {
	if len(calendars) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(calendars))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(calendars)+1)
	for _, c := range calendars {
		args = append(args, c)
	}

	query := `SELECT ` + eventColumns + ` FROM events
		 WHERE calendar_id IN (` + placeholders + `)
		 ORDER BY start_time ASC, id ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events by calendars: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ApplyOperations applies an update transaction's field set to the stored
// event. Unknown field names are ignored.
func (s *EventStore) ApplyOperations(ctx context.Context, id, actor model.Ref, ops map[string]any) error {
	set := make([]string, 0, len(ops)+2)
	args := make([]any, 0, len(ops)+3)

	for field, value := range ops {
		column, arg, err := eventColumnFor(field, value)
		if err != nil {
			return err
		}
		if column == "" {
			continue
		}
		set = append(set, column+" = ?")
		args = append(args, arg)
	}
	if len(set) == 0 {
		return nil
	}

	set = append(set, "modified_by = ?", "modified_at = ?")
	args = append(args, actor, time.Now().UTC(), id)

	_, err := s.db.ExecContext(ctx,
		`UPDATE events SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes the event and returns its last stored state, so removal
// triggers can still read the document after it is gone.
func (s *EventStore) Delete(ctx context.Context, id model.Ref) (*model.Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return e, nil
}

// eventColumnFor maps an operation field name to its column and normalized
// value. Returns an empty column name for fields that have no column.
func eventColumnFor(field string, value any) (string, any, error) {
	switch field {
	case "title":
		return "title", value, nil
	case "description":
		return "description", value, nil
	case "location":
		return "location", value, nil
	case "visibility":
		return "visibility", fmt.Sprint(value), nil
	case "allDay":
		b, ok := value.(bool)
		if !ok {
			return "", nil, fmt.Errorf("allDay operation: got %T, want bool", value)
		}
		if b {
			return "all_day", 1, nil
		}
		return "all_day", 0, nil
	case "startTime":
		t, err := opTime(value)
		if err != nil {
			return "", nil, fmt.Errorf("startTime operation: %w", err)
		}
		return "start_time", t, nil
	case "endTime":
		t, err := opTime(value)
		if err != nil {
			return "", nil, fmt.Errorf("endTime operation: %w", err)
		}
		return "end_time", t, nil
	case "participants":
		refs, err := opRefs(value)
		if err != nil {
			return "", nil, fmt.Errorf("participants operation: %w", err)
		}
		data, err := json.Marshal(refs)
		if err != nil {
			return "", nil, fmt.Errorf("marshal participants: %w", err)
		}
		return "participants", string(data), nil
	default:
		return "", nil, nil
	}
}

// opTime accepts a time.Time or an RFC3339 string (transactions arriving over
// HTTP decode times as strings).
func opTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("got %T, want time or RFC3339 string", value)
	}
}

// opRefs accepts []model.Ref, []string or []any of strings.
func opRefs(value any) ([]model.Ref, error) {
	switch v := value.(type) {
	case []model.Ref:
		return v, nil
	case []string:
		refs := make([]model.Ref, len(v))
		for i, s := range v {
			refs[i] = model.Ref(s)
		}
		return refs, nil
	case []any:
		refs := make([]model.Ref, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: got %T, want string", i, e)
			}
			refs[i] = model.Ref(s)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("got %T, want reference list", value)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var allDayInt int
	var participants string

	err := row.Scan(
		&e.ID, &e.EventID, &e.Calendar, &e.Access, &e.Title, &e.Description, &e.Location,
		&e.StartTime, &e.EndTime, &allDayInt, &e.Visibility, &participants,
		&e.AttachedTo, &e.AttachedToClass, &e.Collection,
		&e.CreatedBy, &e.ModifiedBy, &e.CreatedAt, &e.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	e.AllDay = allDayInt != 0
	if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
		return nil, fmt.Errorf("unmarshal participants: %w", err)
	}
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
