package repository

import (
	"context"
	"errors"

	"workspace-console/backend/internal/ledger/domain"
)

// ErrAlreadyReserved is returned by Reserve when a usage row already exists
// for the same (region, user, workspace) key. The orchestrator relies on
// this to make compensation retries safe: a double reserve never overwrites.
var ErrAlreadyReserved = errors.New("seat already reserved for this workspace")

// Repository defines persistence for the global quota ledger.
type Repository interface {
	// Reserve inserts a usage row; fails with ErrAlreadyReserved if the key exists.
	Reserve(ctx context.Context, u *domain.WorkspaceUsage) error
	// Release deletes the usage row. Releasing a missing row is not an error.
	Release(ctx context.Context, region, userID, workspaceID string) error
	// Get returns the usage row, or nil if not found.
	Get(ctx context.Context, region, userID, workspaceID string) (*domain.WorkspaceUsage, error)
	// CountFor returns the number of usage rows held by the user in the region.
	CountFor(ctx context.Context, region, userID string) (int, error)
	// SwapSeats exchanges the seat values of the two users' rows for the
	// workspace atomically. Both rows must exist; no reader ever observes a
	// half-swapped state. Applying the same swap twice restores the original
	// seats, so a swap is its own compensation.
	SwapSeats(ctx context.Context, region, workspaceID, userA, userB string) error
}
