package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PutDraft upserts the snapshot stored under key.
func (db *DB) PutDraft(ctx context.Context, key string, snapshot []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO resume_drafts (key, snapshot)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET snapshot = $2, updated_at = NOW()`,
		key, snapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// GetDraft returns the snapshot under key, or found == false.
func (db *DB) GetDraft(ctx context.Context, key string) ([]byte, bool, error) {
	var snapshot []byte
	err := db.pool.QueryRow(ctx,
		`SELECT snapshot FROM resume_drafts WHERE key = $1`, key,
	).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load draft: %w", err)
	}
	return snapshot, true, nil
}

// DeleteDraft removes the snapshot under key.
func (db *DB) DeleteDraft(ctx context.Context, key string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM resume_drafts WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
