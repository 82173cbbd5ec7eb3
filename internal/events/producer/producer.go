// Package producer defines the interface for publishing membership events (e.g. to Kafka).
package producer

import (
	"context"

	"workspace-console/backend/internal/events"
)

// Producer publishes membership events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; call from a goroutine if needed.
	// Returns an error only on write failure; callers typically log and ignore.
	Emit(ctx context.Context, event *events.MembershipEvent) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
