package repository

import (
	"context"

	"workspace-console/backend/internal/membership/domain"
)

// Repository defines persistence for workspace memberships. All methods are
// keyed by (workspace, user). Get returns nil, nil for missing rows.
type Repository interface {
	Get(ctx context.Context, workspaceID, userID string) (*domain.Membership, error)
	Upsert(ctx context.Context, m *domain.Membership) error
	Delete(ctx context.Context, workspaceID, userID string) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	// TransferOwnership promotes toUserID to OWNER and demotes fromUserID to
	// demotedRole in a single transaction: no reader ever observes zero or
	// two owners. Both rows must exist with status IN_WORKSPACE.
	TransferOwnership(ctx context.Context, workspaceID, toUserID, fromUserID string, demotedRole domain.Role) error
}
