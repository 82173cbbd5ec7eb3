package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"workspace-console/backend/internal/membership/domain"
)

// PostgresRepository implements Repository over the regional membership
// database with hand-written SQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the membership for (workspaceID, userID), or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, workspaceID, userID string) (*domain.Membership, error) {
	const query = `
		SELECT workspace_id, user_id, role, status, is_private, joined_at
		FROM memberships
		WHERE workspace_id = $1 AND user_id = $2
	`
	m := &domain.Membership{}
	err := r.db.QueryRowContext(ctx, query, workspaceID, userID).Scan(
		&m.WorkspaceID, &m.UserID, &m.Role, &m.Status, &m.IsPrivate, &m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Upsert inserts the membership or replaces the existing row for the same
// (workspace, user) key. Replacing is what turns an INVITED row into
// IN_WORKSPACE and a REJECTED row into a fresh invite.
func (r *PostgresRepository) Upsert(ctx context.Context, m *domain.Membership) error {
	const query = `
		INSERT INTO memberships (workspace_id, user_id, role, status, is_private, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (workspace_id, user_id) DO UPDATE
		SET role = EXCLUDED.role,
		    status = EXCLUDED.status,
		    is_private = EXCLUDED.is_private,
		    joined_at = EXCLUDED.joined_at
	`
	_, err := r.db.ExecContext(ctx, query, m.WorkspaceID, m.UserID, string(m.Role), string(m.Status), m.IsPrivate, m.JoinedAt)
	return err
}

// Delete removes the membership row. Deleting a missing row is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, workspaceID, userID string) error {
	const query = `DELETE FROM memberships WHERE workspace_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, workspaceID, userID)
	return err
}

// ListByWorkspace returns all membership rows for the workspace, owners first.
func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Membership, error) {
	const query = `
		SELECT workspace_id, user_id, role, status, is_private, joined_at
		FROM memberships
		WHERE workspace_id = $1
		ORDER BY joined_at, user_id
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemberships(rows)
}

// ListByUser returns all membership rows for the user across workspaces.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	const query = `
		SELECT workspace_id, user_id, role, status, is_private, joined_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY joined_at, workspace_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemberships(rows)
}

// TransferOwnership flips both role fields inside one transaction. Each
// update requires the row to be IN_WORKSPACE; if either touches no row the
// transaction rolls back so a concurrent removal cannot strand the workspace
// with zero or two owners.
func (r *PostgresRepository) TransferOwnership(ctx context.Context, workspaceID, toUserID, fromUserID string, demotedRole domain.Role) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const update = `
		UPDATE memberships
		SET role = $3
		WHERE workspace_id = $1 AND user_id = $2 AND status = 'IN_WORKSPACE'
	`
	if err := execOne(ctx, tx, update, workspaceID, toUserID, string(domain.RoleOwner)); err != nil {
		return fmt.Errorf("promote %s: %w", toUserID, err)
	}
	if err := execOne(ctx, tx, update, workspaceID, fromUserID, string(demotedRole)); err != nil {
		return fmt.Errorf("demote %s: %w", fromUserID, err)
	}
	return tx.Commit()
}

func execOne(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return sql.ErrNoRows
	}
	return nil
}

func scanMemberships(rows *sql.Rows) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for rows.Next() {
		m := &domain.Membership{}
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.Status, &m.IsPrivate, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
