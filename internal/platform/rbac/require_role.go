package rbac

import (
	"context"
	"fmt"
	"strings"

	"workspace-console/backend/internal/apperr"
	"workspace-console/backend/internal/membership/domain"
)

// RequireRoleAtLeast ensures the caller is an IN_WORKSPACE member whose role
// ranks at or above min. Returns the membership on success.
func RequireRoleAtLeast(ctx context.Context, getter MembershipGetter, workspaceID, userID string, min domain.Role) (*domain.Membership, error) {
	m, err := RequireMember(ctx, getter, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !m.Role.AtLeast(min) {
		return nil, apperr.Forbidden(fmt.Sprintf("%s role or above required", strings.ToLower(string(min))))
	}
	return m, nil
}

// RequireOwner ensures the caller is the workspace owner.
func RequireOwner(ctx context.Context, getter MembershipGetter, workspaceID, userID string) (*domain.Membership, error) {
	m, err := RequireMember(ctx, getter, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if m.Role != domain.RoleOwner {
		return nil, apperr.Forbidden("workspace owner required")
	}
	return m, nil
}
