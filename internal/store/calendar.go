package store

import (
	"context"
	"database/sql"
	"fmt"

	"shadowcal/internal/model"
)

type CalendarStore struct {
	db *sql.DB
}

func NewCalendarStore(db *sql.DB) *CalendarStore {
	return &CalendarStore{db: db}
}

const calendarColumns = `id, name, hidden, is_default, visibility,
	created_by, modified_by, created_at, modified_at`

func (s *CalendarStore) Create(ctx context.Context, c *model.Calendar) error {
	var hiddenInt, defaultInt int
	if c.Hidden {
		hiddenInt = 1
	}
	if c.Default {
		defaultInt = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calendars (`+calendarColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, hiddenInt, defaultInt, c.Visibility,
		c.CreatedBy, c.ModifiedBy, c.CreatedAt.UTC(), c.ModifiedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert calendar: %w", err)
	}
	return nil
}

func (s *CalendarStore) GetByID(ctx context.Context, id model.Ref) (*model.Calendar, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+calendarColumns+` FROM calendars WHERE id = ?`, id)
	c, err := scanCalendar(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}
	return c, nil
}

// ByModifier returns the calendars created or last modified by the given
// account, ordered by creation time then id so the calendar-selection
// tie-break is deterministic.
func (s *CalendarStore) ByModifier(ctx context.Context, account model.Ref) ([]model.Calendar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+calendarColumns+` FROM calendars
		 WHERE created_by = ? OR modified_by = ?
		 ORDER BY created_at ASC, id ASC`,
		account, account)
	if err != nil {
		return nil, fmt.Errorf("query calendars by modifier: %w", err)
	}
	defer rows.Close()

	var calendars []model.Calendar
	for rows.Next() {
		c, err := scanCalendar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		calendars = append(calendars, *c)
	}
	return calendars, rows.Err()
}

func (s *CalendarStore) Delete(ctx context.Context, id model.Ref) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM calendars WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete calendar: %w", err)
	}
	return nil
}

func scanCalendar(row rowScanner) (*model.Calendar, error) {
	var c model.Calendar
	var hiddenInt, defaultInt int

	err := row.Scan(
		&c.ID, &c.Name, &hiddenInt, &defaultInt, &c.Visibility,
		&c.CreatedBy, &c.ModifiedBy, &c.CreatedAt, &c.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Hidden = hiddenInt != 0
	c.Default = defaultInt != 0
	return &c, nil
}
