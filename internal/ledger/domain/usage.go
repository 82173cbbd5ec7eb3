package domain

import "errors"

// WorkspaceUsage is one seat of per-workspace-per-user quota consumption in
// the global ledger. Key is (Region, UserID, WorkspaceID). Exactly one row
// exists for every membership with status IN_WORKSPACE.
type WorkspaceUsage struct {
	Region      string
	UserID      string
	WorkspaceID string
	// Seat is the member's ordinal position snapshot taken at grant time.
	// It feeds quota accounting and is never renumbered.
	Seat int
}

// Validate validates the usage row for persistence.
func (u *WorkspaceUsage) Validate() error {
	if u.Region == "" {
		return errors.New("region is required")
	}
	if u.UserID == "" {
		return errors.New("user id is required")
	}
	if u.WorkspaceID == "" {
		return errors.New("workspace id is required")
	}
	if u.Seat < 1 {
		return errors.New("seat must be positive")
	}
	return nil
}
