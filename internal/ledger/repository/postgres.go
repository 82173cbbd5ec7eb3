package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"workspace-console/backend/internal/ledger/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over the global ledger database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a ledger repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Reserve inserts the usage row. The primary key on (region, user_id,
// workspace_id) gives Reserve its linearizable insert-once semantics;
// a duplicate insert returns ErrAlreadyReserved.
func (r *PostgresRepository) Reserve(ctx context.Context, u *domain.WorkspaceUsage) error {
	const query = `
		INSERT INTO workspace_usage (region, user_id, workspace_id, seat)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, u.Region, u.UserID, u.WorkspaceID, u.Seat)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyReserved
		}
		return err
	}
	return nil
}

// Release deletes the usage row for the key. Missing rows are ignored so the
// orchestrator can retry a compensation that already ran.
func (r *PostgresRepository) Release(ctx context.Context, region, userID, workspaceID string) error {
	const query = `
		DELETE FROM workspace_usage
		WHERE region = $1 AND user_id = $2 AND workspace_id = $3
	`
	_, err := r.db.ExecContext(ctx, query, region, userID, workspaceID)
	return err
}

// Get returns the usage row for the key, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, region, userID, workspaceID string) (*domain.WorkspaceUsage, error) {
	const query = `
		SELECT region, user_id, workspace_id, seat
		FROM workspace_usage
		WHERE region = $1 AND user_id = $2 AND workspace_id = $3
	`
	u := &domain.WorkspaceUsage{}
	err := r.db.QueryRowContext(ctx, query, region, userID, workspaceID).Scan(
		&u.Region, &u.UserID, &u.WorkspaceID, &u.Seat,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// SwapSeats exchanges the two rows' seat values in a single cross-update
// statement, so the swap commits atomically. Fails unless exactly the two
// expected rows were updated.
func (r *PostgresRepository) SwapSeats(ctx context.Context, region, workspaceID, userA, userB string) error {
	const query = `
		UPDATE workspace_usage u
		SET seat = o.seat
		FROM workspace_usage o
		WHERE u.region = $1 AND u.workspace_id = $2
		  AND o.region = $1 AND o.workspace_id = $2
		  AND ((u.user_id = $3 AND o.user_id = $4) OR (u.user_id = $4 AND o.user_id = $3))
	`
	res, err := r.db.ExecContext(ctx, query, region, workspaceID, userA, userB)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("swap seats: updated %d rows, want 2", n)
	}
	return nil
}

// CountFor returns how many workspaces consume a seat for the user in the
// region. Plan limits are checked against this count, not against seat values.
func (r *PostgresRepository) CountFor(ctx context.Context, region, userID string) (int, error) {
	const query = `
		SELECT COUNT(*) FROM workspace_usage
		WHERE region = $1 AND user_id = $2
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, region, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
