package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cv-builder/internal/types"
)

const resumeColumns = `id, name, template, customization, data, created_at, updated_at`

// CreateResume inserts r for owner with a fresh id and returns the stored row.
func (db *DB) CreateResume(ctx context.Context, owner string, r types.SavedResume) (*types.SavedResume, error) {
	customization, data, err := marshalResume(r)
	if err != nil {
		return nil, err
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (id, owner, name, template, customization, data)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+resumeColumns,
		uuid.New(), owner, r.Name, r.Template, customization, data,
	)
	saved, err := scanResume(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return saved, nil
}

// GetResume returns the résumé or nil if owner has no résumé with that id.
func (db *DB) GetResume(ctx context.Context, owner, id string) (*types.SavedResume, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	row := db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND owner = $2`,
		rid, owner,
	)
	return scanOptionalResume(row, "get")
}

// ListResumes returns owner's résumés, most recently updated first.
func (db *DB) ListResumes(ctx context.Context, owner string) ([]types.SavedResume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE owner = $1 ORDER BY updated_at DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []types.SavedResume{}
	for rows.Next() {
		saved, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, *saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resumes: %w", err)
	}
	return resumes, nil
}

// UpdateResume replaces the stored fields and refreshes updated_at.
// Returns nil if the résumé does not exist for owner.
func (db *DB) UpdateResume(ctx context.Context, owner string, r types.SavedResume) (*types.SavedResume, error) {
	rid, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, nil
	}
	customization, data, err := marshalResume(r)
	if err != nil {
		return nil, err
	}

	row := db.pool.QueryRow(ctx,
		`UPDATE resumes
		 SET name = $3, template = $4, customization = $5, data = $6, updated_at = NOW()
		 WHERE id = $1 AND owner = $2
		 RETURNING `+resumeColumns,
		rid, owner, r.Name, r.Template, customization, data,
	)
	return scanOptionalResume(row, "update")
}

// DeleteResume removes the résumé. It reports whether a row was deleted.
func (db *DB) DeleteResume(ctx context.Context, owner, id string) (bool, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	tag, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1 AND owner = $2`, rid, owner)
	if err != nil {
		return false, fmt.Errorf("failed to delete resume: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func marshalResume(r types.SavedResume) (customization, data []byte, err error) {
	customization, err = json.Marshal(r.Customization)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal customization: %w", err)
	}
	data, err = json.Marshal(r.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal resume data: %w", err)
	}
	return customization, data, nil
}

// scanOptionalResume scans one résumé; a missing row yields nil, nil.
func scanOptionalResume(row pgx.Row, op string) (*types.SavedResume, error) {
	saved, err := scanResume(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s resume: %w", op, err)
	}
	return saved, nil
}

func scanResume(row pgx.Row) (*types.SavedResume, error) {
	var (
		r             types.SavedResume
		id            uuid.UUID
		customization []byte
		data          []byte
	)
	if err := row.Scan(&id, &r.Name, &r.Template, &customization, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(customization, &r.Customization); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customization: %w", err)
	}
	if err := json.Unmarshal(data, &r.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume data: %w", err)
	}
	r.ID = id.String()
	r.Data.ID = r.ID
	r.Data = r.Data.Normalize()
	return &r, nil
}
