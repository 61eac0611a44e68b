package store

import (
	"context"
	"database/sql"
	"fmt"

	"shadowcal/internal/model"
)

type CardStore struct {
	db *sql.DB
}

func NewCardStore(db *sql.DB) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) Create(ctx context.Context, c *model.Card) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, title, content, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Title, c.Content, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

func (s *CardStore) GetByID(ctx context.Context, id model.Ref) (*model.Card, error) {
	var c model.Card
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, created_at FROM cards WHERE id = ?`, id).
		Scan(&c.ID, &c.Title, &c.Content, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query card: %w", err)
	}
	return &c, nil
}
