package repository

import (
	"context"
	"database/sql"
	"errors"

	"workspace-console/backend/internal/workspace/domain"
)

// PostgresRepository implements Repository over the regional membership
// database (workspaces live next to membership rows).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a workspace repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the workspace. The unique constraint on
// (created_by, display_name) backs the duplicate-name conflict.
func (r *PostgresRepository) Create(ctx context.Context, w *domain.Workspace) error {
	const query = `
		INSERT INTO workspaces (uid, id, display_name, created_by, is_private, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, w.UID, w.ID, w.DisplayName, w.CreatedBy, w.IsPrivate, w.CreatedAt)
	return err
}

// GetByUID returns the workspace for uid, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUID(ctx context.Context, uid string) (*domain.Workspace, error) {
	const query = `
		SELECT uid, id, display_name, created_by, is_private, created_at
		FROM workspaces
		WHERE uid = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, uid))
}

// GetByCreatorAndName returns the creator's workspace with the given display
// name, or nil if not found.
func (r *PostgresRepository) GetByCreatorAndName(ctx context.Context, createdBy, displayName string) (*domain.Workspace, error) {
	const query = `
		SELECT uid, id, display_name, created_by, is_private, created_at
		FROM workspaces
		WHERE created_by = $1 AND display_name = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, createdBy, displayName))
}

// Delete removes the workspace row; membership rows cascade at the schema
// level, but the orchestrator deletes them explicitly so compensations hold
// their prior values.
func (r *PostgresRepository) Delete(ctx context.Context, uid string) error {
	const query = `DELETE FROM workspaces WHERE uid = $1`
	_, err := r.db.ExecContext(ctx, query, uid)
	return err
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*domain.Workspace, error) {
	w := &domain.Workspace{}
	err := row.Scan(&w.UID, &w.ID, &w.DisplayName, &w.CreatedBy, &w.IsPrivate, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}
