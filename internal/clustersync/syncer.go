// Package clustersync converges cluster-level role bindings to a desired
// state. The core never reads bindings back; the post-condition of an
// operation is that Sync was called with the new desired state and did not
// report a durable failure.
package clustersync

import (
	"context"
	"fmt"

	"workspace-console/backend/internal/membership/domain"
)

// Syncer converges the cluster's role binding for (workspace, user) to the
// desired role. A nil role removes the binding. Implementations must be
// idempotent: re-applying the same desired state converges to the same
// result.
type Syncer interface {
	Sync(ctx context.Context, workspaceID, userID string, role *domain.Role) error
}

// TransientError marks a sync failure the caller may retry (network errors,
// timeouts, 5xx). The orchestrator does not retry inside a saga; the error
// surfaces to the caller after compensation.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("cluster sync (transient): %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a durable rejection (4xx other than timeout-ish
// statuses); it triggers immediate compensation.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return fmt.Sprintf("cluster sync (permanent): %v", e.Err) }
func (e *PermanentError) Unwrap() error { return e.Err }
