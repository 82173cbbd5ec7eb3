// Package service implements the membership/ownership operations as sagas over
// the quota ledger, the membership store, and the cluster control plane.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-console/backend/internal/apperr"
	"workspace-console/backend/internal/clustersync"
	"workspace-console/backend/internal/events"
	ledgerdomain "workspace-console/backend/internal/ledger/domain"
	ledgerrepo "workspace-console/backend/internal/ledger/repository"
	memberdomain "workspace-console/backend/internal/membership/domain"
	memberrepo "workspace-console/backend/internal/membership/repository"
	"workspace-console/backend/internal/platform/rbac"
	"workspace-console/backend/internal/saga"
	"workspace-console/backend/internal/workspace/domain"
	workspacerepo "workspace-console/backend/internal/workspace/repository"
)

// WorkspaceService orchestrates membership operations. Every mutation runs as
// a saga: ledger first, membership second, cluster sync last, with paired
// compensations for the committed steps.
type WorkspaceService struct {
	workspaces workspacerepo.Repository
	members    memberrepo.Repository
	ledger     ledgerrepo.Repository
	cluster    clustersync.Syncer
	sagas      *saga.Orchestrator
	emitter    events.Emitter

	// region keys the ledger rows this deployment writes.
	region string
	// workspaceLimit caps how many workspaces a user may hold seats in.
	workspaceLimit int
}

// NewWorkspaceService wires the service. emitter may be nil (events are
// best-effort); everything else is required.
func NewWorkspaceService(
	workspaces workspacerepo.Repository,
	members memberrepo.Repository,
	ledger ledgerrepo.Repository,
	cluster clustersync.Syncer,
	sagas *saga.Orchestrator,
	emitter events.Emitter,
	region string,
	workspaceLimit int,
) *WorkspaceService {
	return &WorkspaceService{
		workspaces:     workspaces,
		members:        members,
		ledger:         ledger,
		cluster:        cluster,
		sagas:          sagas,
		emitter:        emitter,
		region:         region,
		workspaceLimit: workspaceLimit,
	}
}

// CreateWorkspace creates a workspace with the creator as its sole owner:
// one ledger row (seat 1), one OWNER membership, one cluster binding.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, creator, displayName string, isPrivate bool) (*domain.Workspace, error) {
	if creator == "" {
		return nil, apperr.Validation("creator is required")
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, apperr.Validation("display name is required")
	}
	id := domain.SlugFromDisplayName(displayName)
	if id == "" {
		return nil, apperr.Validation("display name has no usable characters")
	}

	existing, err := s.workspaces.GetByCreatorAndName(ctx, creator, displayName)
	if err != nil {
		return nil, apperr.TransientStore("workspace lookup", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("a workspace with this name already exists")
	}

	held, err := s.ledger.CountFor(ctx, s.region, creator)
	if err != nil {
		return nil, apperr.TransientStore("quota check", err)
	}
	if held >= s.workspaceLimit {
		return nil, apperr.Forbidden("workspace limit reached for this plan")
	}

	now := time.Now().UTC()
	ws := &domain.Workspace{
		UID:         uuid.New().String(),
		ID:          id,
		DisplayName: displayName,
		CreatedBy:   creator,
		IsPrivate:   isPrivate,
		CreatedAt:   now,
	}
	owner := &memberdomain.Membership{
		WorkspaceID: ws.UID,
		UserID:      creator,
		Role:        memberdomain.RoleOwner,
		Status:      memberdomain.StatusInWorkspace,
		IsPrivate:   isPrivate,
		JoinedAt:    now,
	}

	err = s.sagas.Execute(ctx, "create_workspace", []saga.Step{
		{
			Name: "reserve_seat",
			Run: func(ctx context.Context) error {
				return s.ledger.Reserve(ctx, &ledgerdomain.WorkspaceUsage{
					Region: s.region, UserID: creator, WorkspaceID: ws.UID, Seat: 1,
				})
			},
			Compensate: func(ctx context.Context) error {
				return s.ledger.Release(ctx, s.region, creator, ws.UID)
			},
		},
		{
			Name: "create_workspace",
			Run: func(ctx context.Context) error {
				return s.workspaces.Create(ctx, ws)
			},
			Compensate: func(ctx context.Context) error {
				return s.workspaces.Delete(ctx, ws.UID)
			},
		},
		{
			Name: "create_owner_membership",
			Run: func(ctx context.Context) error {
				return s.members.Upsert(ctx, owner)
			},
			Compensate: func(ctx context.Context) error {
				return s.members.Delete(ctx, ws.UID, creator)
			},
		},
		{
			Name: "sync_cluster",
			Run: func(ctx context.Context) error {
				role := memberdomain.RoleOwner
				return s.cluster.Sync(ctx, ws.UID, creator, &role)
			},
		},
	})
	if err != nil {
		return nil, s.classify("create workspace", err)
	}

	events.EmitAsync(s.emitter, ctx, &events.MembershipEvent{
		WorkspaceID: ws.UID,
		UserID:      creator,
		ActorID:     creator,
		EventType:   events.TypeWorkspaceCreated,
		Role:        string(memberdomain.RoleOwner),
		Seat:        1,
		CreatedAt:   now,
	})
	return ws, nil
}

// DeleteWorkspace removes a workspace that has no members besides its owner:
// releases the owner's seat, deletes the membership and workspace rows, and
// removes the owner's cluster binding.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, actor, workspaceID string) error {
	ws, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	owner, err := rbac.RequireOwner(ctx, s.members, workspaceID, actor)
	if err != nil {
		return err
	}

	others, err := s.members.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return apperr.TransientStore("member listing", err)
	}
	for _, m := range others {
		if m.UserID != actor && m.Status == memberdomain.StatusInWorkspace {
			return apperr.Conflict("workspace still has members")
		}
	}

	usage, err := s.ledger.Get(ctx, s.region, actor, workspaceID)
	if err != nil {
		return apperr.TransientStore("ledger lookup", err)
	}
	if usage == nil {
		return storesDisagree("delete workspace", "owner has no ledger row")
	}

	err = s.sagas.Execute(ctx, "delete_workspace", []saga.Step{
		{
			Name: "release_seat",
			Run: func(ctx context.Context) error {
				return s.ledger.Release(ctx, s.region, actor, workspaceID)
			},
			Compensate: func(ctx context.Context) error {
				return s.ledger.Reserve(ctx, usage)
			},
		},
		{
			Name: "delete_owner_membership",
			Run: func(ctx context.Context) error {
				return s.members.Delete(ctx, workspaceID, actor)
			},
			Compensate: func(ctx context.Context) error {
				return s.members.Upsert(ctx, owner)
			},
		},
		{
			Name: "delete_workspace",
			Run: func(ctx context.Context) error {
				return s.workspaces.Delete(ctx, workspaceID)
			},
			Compensate: func(ctx context.Context) error {
				return s.workspaces.Create(ctx, ws)
			},
		},
		{
			Name: "remove_cluster_binding",
			Run: func(ctx context.Context) error {
				return s.cluster.Sync(ctx, workspaceID, actor, nil)
			},
		},
	})
	if err != nil {
		return s.classify("delete workspace", err)
	}

	events.EmitAsync(s.emitter, ctx, &events.MembershipEvent{
		WorkspaceID: workspaceID,
		UserID:      actor,
		ActorID:     actor,
		EventType:   events.TypeWorkspaceDeleted,
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// GetWorkspace returns the workspace if the caller is an IN_WORKSPACE member.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, actor, workspaceID string) (*domain.Workspace, error) {
	ws, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if _, err := rbac.RequireMember(ctx, s.members, workspaceID, actor); err != nil {
		return nil, err
	}
	return ws, nil
}

// ListMembers returns all membership rows of the workspace, including pending
// invites. The caller must be an IN_WORKSPACE member.
func (s *WorkspaceService) ListMembers(ctx context.Context, actor, workspaceID string) ([]*memberdomain.Membership, error) {
	if _, err := s.getWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	if _, err := rbac.RequireMember(ctx, s.members, workspaceID, actor); err != nil {
		return nil, err
	}
	list, err := s.members.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperr.TransientStore("member listing", err)
	}
	return list, nil
}

// ListWorkspacesForUser returns the user's membership rows across all
// workspaces, including pending invites.
func (s *WorkspaceService) ListWorkspacesForUser(ctx context.Context, userID string) ([]*memberdomain.Membership, error) {
	if userID == "" {
		return nil, apperr.Validation("user is required")
	}
	list, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.TransientStore("workspace listing", err)
	}
	return list, nil
}

// getWorkspace loads the workspace or returns NotFound.
func (s *WorkspaceService) getWorkspace(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	if workspaceID == "" {
		return nil, apperr.Validation("workspace id is required")
	}
	ws, err := s.workspaces.GetByUID(ctx, workspaceID)
	if err != nil {
		return nil, apperr.TransientStore("workspace lookup", err)
	}
	if ws == nil {
		return nil, apperr.NotFound("workspace")
	}
	return ws, nil
}

// inWorkspaceCount counts memberships with status IN_WORKSPACE.
func (s *WorkspaceService) inWorkspaceCount(ctx context.Context, workspaceID string) (int, error) {
	list, err := s.members.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range list {
		if m.Status == memberdomain.StatusInWorkspace {
			n++
		}
	}
	return n, nil
}

// classify wraps a saga error for the caller. Taxonomy errors pass through;
// anything else is a transient store failure observed during op.
func (s *WorkspaceService) classify(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.TransientStore(op, err)
}

// storesDisagree reports a pre-existing ledger/membership mismatch detected
// before any mutation. It shares the inconsistent-state kind so it alerts the
// same way a compensation failure does.
func storesDisagree(op, detail string) error {
	return &apperr.Error{
		Kind:    apperr.KindInconsistentState,
		Message: fmt.Sprintf("%s: stores disagree: %s", op, detail),
	}
}
