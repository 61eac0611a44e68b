package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shadowcal/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

// Create registers a push subscription for an account. Re-subscribing the
// same endpoint replaces the stored keys.
func (s *PushStore) Create(ctx context.Context, accountID model.Ref, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (account_id, endpoint, p256dh_key, auth_key, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET account_id = excluded.account_id,
			p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key`,
		accountID, endpoint, p256dh, auth, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("insert push subscription: %w", err)
	}

	// The endpoint is the stable key; LastInsertId lies on the upsert path.
	return s.GetByEndpoint(ctx, endpoint)
}

func (s *PushStore) GetByEndpoint(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, endpoint, p256dh_key, auth_key, created_at
		 FROM push_subscriptions WHERE endpoint = ?`, endpoint).
		Scan(&sub.ID, &sub.AccountID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query push subscription by endpoint: %w", err)
	}
	return &sub, nil
}

func (s *PushStore) GetByID(ctx context.Context, id int64) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, endpoint, p256dh_key, auth_key, created_at
		 FROM push_subscriptions WHERE id = ?`, id).
		Scan(&sub.ID, &sub.AccountID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query push subscription: %w", err)
	}
	return &sub, nil
}

func (s *PushStore) ByAccount(ctx context.Context, accountID model.Ref) ([]model.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, endpoint, p256dh_key, auth_key, created_at
		 FROM push_subscriptions WHERE account_id = ? ORDER BY id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		var sub model.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.AccountID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DeleteByEndpoint drops a subscription the push service reported gone.
func (s *PushStore) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint); err != nil {
		return fmt.Errorf("delete push subscription by endpoint: %w", err)
	}
	return nil
}

func (s *PushStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM push_subscriptions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}
