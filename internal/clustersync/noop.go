package clustersync

import (
	"context"
	"log"

	"workspace-console/backend/internal/membership/domain"
)

// NoopSyncer accepts every desired state without talking to a cluster. Used
// in local development when no sync endpoint is configured.
type NoopSyncer struct{}

// Sync logs the desired binding and succeeds.
func (NoopSyncer) Sync(ctx context.Context, workspaceID, userID string, role *domain.Role) error {
	if role == nil {
		log.Printf("clustersync (noop): remove binding workspace=%s user=%s", workspaceID, userID)
		return nil
	}
	log.Printf("clustersync (noop): bind workspace=%s user=%s role=%s", workspaceID, userID, *role)
	return nil
}
