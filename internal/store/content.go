package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ContentRecord is one collaborative-content blob.
type ContentRecord struct {
	Key       string
	Data      []byte
	CreatedAt time.Time
}

// ContentStore reads legacy collaborative-content blobs and writes them into
// the new layout. Used only by the relocation tool.
type ContentStore struct {
	db *sql.DB
}

func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) PutLegacy(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO legacy_content (key, data, created_at) VALUES (?, ?, ?)`,
		key, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert legacy content: %w", err)
	}
	return nil
}

// ListLegacy returns all legacy records in key order.
func (s *ContentStore) ListLegacy(ctx context.Context) ([]ContentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, data, created_at FROM legacy_content ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("query legacy content: %w", err)
	}
	defer rows.Close()

	var records []ContentRecord
	for rows.Next() {
		var r ContentRecord
		if err := rows.Scan(&r.Key, &r.Data, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan legacy content: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Put writes a record into the new layout. Re-running the relocation over an
// already-copied key overwrites with identical data, keeping the tool
// idempotent.
func (s *ContentStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO content (key, data, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		key, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

func (s *ContentStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM content WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	return data, nil
}
