// Package events defines membership lifecycle events and the interface for
// emitting them (e.g. to Kafka). Downstream consumers ship them to Loki.
package events

import "time"

// Event types emitted by the membership core.
const (
	TypeWorkspaceCreated     = "workspace_created"
	TypeWorkspaceDeleted     = "workspace_deleted"
	TypeMemberInvited        = "member_invited"
	TypeInviteAccepted       = "invite_accepted"
	TypeInviteRejected       = "invite_rejected"
	TypeRoleChanged          = "role_changed"
	TypeOwnershipTransferred = "ownership_transferred"
	TypeMemberRemoved        = "member_removed"
)

// MembershipEvent represents one membership lifecycle event. JSON field names
// are part of the Kafka message contract; the Loki shipper parses them.
type MembershipEvent struct {
	WorkspaceID string    `json:"workspaceId"`
	UserID      string    `json:"userId,omitempty"`
	ActorID     string    `json:"actorId,omitempty"`
	EventType   string    `json:"eventType"`
	Role        string    `json:"role,omitempty"`
	Seat        int       `json:"seat,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
