package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"shadowcal/internal/model"
)

// TxStore is the append-only log of applied transactions.
type TxStore struct {
	db *sql.DB
}

func NewTxStore(db *sql.DB) *TxStore {
	return &TxStore{db: db}
}

func (s *TxStore) Append(ctx context.Context, tx model.Transaction) error {
	var document, operations sql.NullString

	if tx.Document != nil {
		data, err := json.Marshal(tx.Document)
		if err != nil {
			return fmt.Errorf("marshal tx document: %w", err)
		}
		document = sql.NullString{String: string(data), Valid: true}
	}
	if tx.Operations != nil {
		data, err := json.Marshal(tx.Operations)
		if err != nil {
			return fmt.Errorf("marshal tx operations: %w", err)
		}
		operations = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, actor, object_id, object_class,
			attached_to, attached_to_class, collection, document, operations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Kind, tx.Actor, tx.ObjectID, tx.ObjectClass,
		tx.AttachedTo, tx.AttachedToClass, tx.Collection, document, operations,
		tx.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// CountByObject returns how many transactions touched the given document.
func (s *TxStore) CountByObject(ctx context.Context, objectID model.Ref) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE object_id = ?`, objectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
