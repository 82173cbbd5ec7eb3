package events

import "context"

// Emitter emits membership events. Best-effort; callers log and ignore errors.
type Emitter interface {
	Emit(ctx context.Context, event *MembershipEvent) error
}
