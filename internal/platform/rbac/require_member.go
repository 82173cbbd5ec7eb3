package rbac

import (
	"context"

	"workspace-console/backend/internal/apperr"
	"workspace-console/backend/internal/membership/domain"
)

// MembershipGetter returns a user's membership in a workspace. Used by the
// Require helpers to resolve the caller's role. Implementations return
// nil, nil for missing rows.
type MembershipGetter interface {
	Get(ctx context.Context, workspaceID, userID string) (*domain.Membership, error)
}

// RequireMember ensures the caller holds an IN_WORKSPACE membership in the
// workspace. Returns the membership on success. Invited and rejected rows do
// not count: the caller is not in the workspace yet.
func RequireMember(ctx context.Context, getter MembershipGetter, workspaceID, userID string) (*domain.Membership, error) {
	if workspaceID == "" || userID == "" {
		return nil, apperr.Validation("workspace and user are required")
	}
	m, err := getter.Get(ctx, workspaceID, userID)
	if err != nil {
		return nil, apperr.TransientStore("resolve membership", err)
	}
	if m == nil || m.Status != domain.StatusInWorkspace {
		return nil, apperr.Forbidden("not a member of this workspace")
	}
	return m, nil
}
