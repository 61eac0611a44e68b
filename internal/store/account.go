package store

import (
	"context"
	"database/sql"
	"fmt"

	"shadowcal/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) CreatePerson(ctx context.Context, p *model.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persons (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (s *AccountStore) CreateAccount(ctx context.Context, a *model.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, person_id, email, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.Person, a.Email, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *AccountStore) GetByID(ctx context.Context, id model.Ref) (*model.Account, error) {
	var a model.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, person_id, email, created_at FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Person, &a.Email, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}
	return &a, nil
}

// ByPerson returns the account linked to the given person, or nil when the
// person has no account.
func (s *AccountStore) ByPerson(ctx context.Context, person model.Ref) (*model.Account, error) {
	var a model.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, person_id, email, created_at FROM accounts WHERE person_id = ? LIMIT 1`, person).
		Scan(&a.ID, &a.Person, &a.Email, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query account by person: %w", err)
	}
	return &a, nil
}

func (s *AccountStore) GetPerson(ctx context.Context, id model.Ref) (*model.Person, error) {
	var p model.Person
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM persons WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query person: %w", err)
	}
	return &p, nil
}
