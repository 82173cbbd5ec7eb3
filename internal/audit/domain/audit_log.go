package domain

import "time"

// AuditLog represents an audit event scoped to a workspace.
type AuditLog struct {
	ID          string
	WorkspaceID string
	UserID      string
	Action      string
	Resource    string
	IP          string
	Metadata    string
	CreatedAt   time.Time
}
