package repository

import (
	"context"

	"workspace-console/backend/internal/workspace/domain"
)

// Repository defines persistence for workspace descriptors. Get methods
// return nil, nil for missing rows.
type Repository interface {
	Create(ctx context.Context, w *domain.Workspace) error
	GetByUID(ctx context.Context, uid string) (*domain.Workspace, error)
	// GetByCreatorAndName backs the per-creator duplicate-name precondition.
	GetByCreatorAndName(ctx context.Context, createdBy, displayName string) (*domain.Workspace, error)
	Delete(ctx context.Context, uid string) error
}
