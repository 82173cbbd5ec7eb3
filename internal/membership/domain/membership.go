package domain

import (
	"errors"
	"time"
)

// Membership links a user to a workspace with a role and an invite status.
// The upsert key is (WorkspaceID, UserID); a user holds at most one row per
// workspace.
type Membership struct {
	WorkspaceID string
	UserID      string
	Role        Role
	Status      Status
	// IsPrivate marks the row as belonging to a personal workspace, which is
	// exempt from invite, role-change, and ownership operations.
	IsPrivate bool
	JoinedAt  time.Time
}

// Role is the closed set of workspace roles. Authorization decisions compare
// ranks via Outranks/AtLeast instead of matching role strings per call site.
type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleManager   Role = "MANAGER"
	RoleDeveloper Role = "DEVELOPER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleDeveloper:
		return true
	}
	return false
}

// Rank returns the role's position in the hierarchy; unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleDeveloper:
		return 1
	}
	return 0
}

// Outranks reports whether r is strictly above other.
func (r Role) Outranks(other Role) bool { return r.Rank() > other.Rank() }

// AtLeast reports whether r is at or above other.
func (r Role) AtLeast(other Role) bool { return r.Rank() >= other.Rank() }

// Status is the invite lifecycle of a membership row.
// Transitions: INVITED -> IN_WORKSPACE or REJECTED; IN_WORKSPACE rows are
// deleted on removal, not marked. A fresh invite replaces a REJECTED row.
type Status string

const (
	StatusInvited     Status = "INVITED"
	StatusInWorkspace Status = "IN_WORKSPACE"
	StatusRejected    Status = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusInvited, StatusInWorkspace, StatusRejected:
		return true
	}
	return false
}

// Validate validates the membership for persistence.
func (m *Membership) Validate() error {
	if m.WorkspaceID == "" {
		return errors.New("workspace id is required")
	}
	if m.UserID == "" {
		return errors.New("user id is required")
	}
	if !m.Role.Valid() {
		return errors.New("unknown role")
	}
	if !m.Status.Valid() {
		return errors.New("unknown status")
	}
	return nil
}
