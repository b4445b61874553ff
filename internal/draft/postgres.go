package draft

import (
	"context"

	"github.com/jonathan/cv-builder/internal/db"
)

// PostgresKV stores snapshots in the resume_drafts table.
type PostgresKV struct {
	db *db.DB
}

// NewPostgresKV wraps a migrated database.
func NewPostgresKV(database *db.DB) *PostgresKV {
	return &PostgresKV{db: database}
}

// Put implements KV.
func (p *PostgresKV) Put(ctx context.Context, key string, value []byte) error {
	return p.db.PutDraft(ctx, key, value)
}

// Get implements KV.
func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.db.GetDraft(ctx, key)
}

// Delete implements KV.
func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	return p.db.DeleteDraft(ctx, key)
}
