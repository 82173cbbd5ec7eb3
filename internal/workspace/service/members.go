package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"workspace-console/backend/internal/apperr"
	"workspace-console/backend/internal/events"
	ledgerdomain "workspace-console/backend/internal/ledger/domain"
	ledgerrepo "workspace-console/backend/internal/ledger/repository"
	memberdomain "workspace-console/backend/internal/membership/domain"
	"workspace-console/backend/internal/platform/rbac"
	"workspace-console/backend/internal/saga"
)

// InviteMember records an INVITED membership for target. No seat is consumed
// until the invite is accepted, so no saga is needed: a single store mutates.
func (s *WorkspaceService) InviteMember(ctx context.Context, actor, workspaceID, target string, role memberdomain.Role) error {
	if target == "" {
		return apperr.Validation("target user is required")
	}
	if !role.Valid() {
		return apperr.Validation("unknown role")
	}
	if role == memberdomain.RoleOwner {
		return apperr.Validation("members cannot be invited as owner")
	}
	ws, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if ws.IsPrivate {
		return apperr.Forbidden("personal workspaces do not accept members")
	}
	if _, err := rbac.RequireRoleAtLeast(ctx, s.members, workspaceID, actor, memberdomain.RoleManager); err != nil {
		return err
	}

	existing, err := s.members.Get(ctx, workspaceID, target)
	if err != nil {
		return apperr.TransientStore("membership lookup", err)
	}
	// A REJECTED row may be re-invited; anything else is already pending or in.
	if existing != nil && existing.Status != memberdomain.StatusRejected {
		return apperr.Conflict("user is already a member or has a pending invite")
	}

	now := time.Now().UTC()
	invite := &memberdomain.Membership{
		WorkspaceID: workspaceID,
		UserID:      target,
		Role:        role,
		Status:      memberdomain.StatusInvited,
		JoinedAt:    now,
	}
	if err := s.members.Upsert(ctx, invite); err != nil {
		return apperr.TransientStore("invite write", err)
	}

	events.EmitAsync(s.emitter, ctx, &events.MembershipEvent{
		WorkspaceID: workspaceID,
		UserID:      target,
		ActorID:     actor,
		EventType:   events.TypeMemberInvited,
		Role:        string(role),
		CreatedAt:   now,
	})
	return nil
}

// RespondToInvite accepts or rejects a pending invite. Accepting reserves a
// seat (member count + 1), flips the row to IN_WORKSPACE, and converges the
// cluster binding; rejecting only marks the row REJECTED.
func (s *WorkspaceService) RespondToInvite(ctx context.Context, target, workspaceID string, accept bool) error {
	if target == "" {
		return apperr.Validation("user is required")
	}
	if _, err := s.getWorkspace(ctx, workspaceID); err != nil {
		return err
	}
	m, err := s.members.Get(ctx, workspaceID, target)
	if err != nil {
		return apperr.TransientStore("membership lookup", err)
	}
	if m == nil || m.Status != memberdomain.StatusInvited {
		return apperr.NotFound("invite")
	}

	if !accept {
		rejected := *m
		rejected.Status = memberdomain.StatusRejected
		if err := s.members.Upsert(ctx, &rejected); err != nil {
			return apperr.TransientStore("invite update", err)
		}
		events.EmitAsync(s.emitter, ctx, &events.MembershipEvent{
			WorkspaceID: workspaceID,
			UserID:      target,
			ActorID:     target,
			EventType:   events.TypeInviteRejected,
			CreatedAt:   time.Now().UTC(),
		})
		return nil
	}

	count, err := s.inWorkspaceCount(ctx, workspaceID)
	if err != nil {
		return apperr.TransientStore("member count", err)
	}
	seat := count + 1

	joined := *m
	joined.Status = memberdomain.StatusInWorkspace
	joined.JoinedAt = time.Now().UTC()

	err = s.sagas.Execute(ctx, "accept_invite", []saga.Step{
		{
			Name: "reserve_seat",
			Run: func(ctx context.Context) error {
				return s.ledger.Reserve(ctx, &ledgerdomain.WorkspaceUsage{
					Region: s.region, UserID: target, WorkspaceID: workspaceID, Seat: seat,
				})
			},
			Compensate: func(ctx context.Context) error {
				return s.ledger.Release(ctx, s.region, target, workspaceID)
			},
		},
		{
			Name: "join_workspace",
			Run: func(ctx context.Context) error {
				return s.members.Upsert(ctx, &joined)
			},
			Compensate: func(ctx context.Context) error {
				return s.members.Upsert(ctx, m)
			},
		},
		{
			Name: "sync_cluster",
			Run: func(ctx context.Context) error {
				role := m.Role
				return s.cluster.Sync(ctx, workspaceID, target, &role)
			},
		},
	})
	if err != nil {
		if errors.Is(err, ledgerrepo.ErrAlreadyReserved) {
			return apperr.Conflict("a seat is already reserved for this user")
		}
		return s.classify("accept invite", err)
	}

	events.EmitAsync(s.emitter, ctx, &events.MembershipEvent{
		WorkspaceID: workspaceID,
		UserID:      target,
		ActorID:     target,
		EventType:   events.TypeInviteAccepted,
		Role:        string(m.Role),
		Seat:        seat,
		CreatedAt:   joined.JoinedAt,
	})
	return nil
}

// ModifyRole changes an IN_WORKSPACE member's role. Only the owner may do
// this, never on themselves, and never to OWNER (ownership moves via
// Abdicate). The ledger is untouched: the member's seat does not change.
func (s *WorkspaceService) ModifyRole(ctx context.Context, actor, workspaceID, target string, newRole memberdomain.Role) error {
	if target == "" {
		return apperr.Validation("target user is required")
	}
	if !newRole.Valid() {
		return apperr.Validation("unknown role")
	}
	if newRole == memberdomain.RoleOwner {
		return apperr.Validation("ownership is transferred, not assigned")
	}
	ws, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if ws.IsPrivate {
		return apperr.Forbidden("personal workspaces have no member roles")
	}
	if _, err := rbac.RequireOwner(ctx, s.members, workspaceID, actor); err != nil {
		return err
	}
	if target == actor {
		return apperr.Conflict("cannot change your own role")
	}

	m, err := s.members.Get(ctx, workspaceID, target)
	if err != nil {
		return apperr.TransientStore("membership lookup", err)
	}
	if m == nil || m.Status != memberdomain.StatusInWorkspace {
		return apperr.NotFound("member")
	}
	if m.Role == newRole {
		return nil
	}

	updated := *m
	updated.Role = newRole

	err = s.sagas.Execute(ctx, "modify_role", []saga.Step{
		{
			Name: "update_role",
			Run: func(ctx context.Context) error {
				return s.members.Upsert(ctx, &updated)
			},
			Compensate: func(ctx context.Context) error {
				return s.members.Upsert(ctx, m)
			},
		},
		{
			Name: "sync_cluster",
			Run: func(ctx context.Context) error {
				role := newRole
				return s.cluster.Sync(ctx, workspaceID, target, &role)
			},
		},
	})
	if err != nil {
		return s.classify("modify role", err)
	}

	events.EmitAsync(s.emitter, ctx, &events.MembershipEvent{
		WorkspaceID: workspaceID,
		UserID:      target,
		ActorID:     actor,
		EventType:   events.TypeRoleChanged,
		Role:        string(newRole),
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// Abdicate transfers ownership to another IN_WORKSPACE member. The two ledger
// rows swap seats (both users stay in the workspace, so both keep exactly one
// row), the two membership roles flip in one transaction, and both cluster
// bindings re-converge.
func (s *WorkspaceService) Abdicate(ctx context.Context, owner, workspaceID, target string) error {
	if target == "" {
		return apperr.Validation("target user is required")
	}
	ws, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if ws.IsPrivate {
		return apperr.Forbidden("personal workspaces have no ownership to transfer")
	}
	if _, err := rbac.RequireOwner(ctx, s.members, workspaceID, owner); err != nil {
		return err
	}
	if target == owner {
		return apperr.Conflict("cannot transfer ownership to yourself")
	}

	tm, err := s.members.Get(ctx, workspaceID, target)
	if err != nil {
		return apperr.TransientStore("membership lookup", err)
	}
	// A missing row and a REJECTED row both read as "not a member".
	if tm == nil || tm.Status != memberdomain.StatusInWorkspace {
		return apperr.NotFound("member")
	}
	priorRole := tm.Role

	ownerUsage, err := s.ledger.Get(ctx, s.region, owner, workspaceID)
	if err != nil {
		return apperr.TransientStore("ledger lookup", err)
	}
	if ownerUsage == nil {
		return storesDisagree("abdicate", "owner has no ledger row")
	}
	targetUsage, err := s.ledger.Get(ctx, s.region, target, workspaceID)
	if err != nil {
		return apperr.TransientStore("ledger lookup", err)
	}
	if targetUsage == nil {
		return storesDisagree("abdicate", "target has no ledger row")
	}

	err = s.sagas.Execute(ctx, "abdicate", []saga.Step{
		{
			// The repository swap is atomic and self-inverse: running it
			// again restores the original seats.
			Name: "swap_ledger_rows",
			Run: func(ctx context.Context) error {
				return s.ledger.SwapSeats(ctx, s.region, workspaceID, owner, target)
			},
			Compensate: func(ctx context.Context) error {
				return s.ledger.SwapSeats(ctx, s.region, workspaceID, owner, target)
			},
		},
		{
			Name: "transfer_ownership",
			Run: func(ctx context.Context) error {
				return s.members.TransferOwnership(ctx, workspaceID, target, owner, memberdomain.RoleDeveloper)
			},
			Compensate: func(ctx context.Context) error {
				return s.members.TransferOwnership(ctx, workspaceID, owner, target, priorRole)
			},
		},
		{
			Name: "sync_cluster",
			Run: func(ctx context.Context) error {
				// The two bindings are independent cluster objects; converge
				// them concurrently, but both must succeed.
				var wg sync.WaitGroup
				var ownerErr, targetErr error
				wg.Add(2)
				go func() {
					defer wg.Done()
					role := memberdomain.RoleDeveloper
					ownerErr = s.cluster.Sync(ctx, workspaceID, owner, &role)
				}()
				go func() {
					defer wg.Done()
					role := memberdomain.RoleOwner
					targetErr = s.cluster.Sync(ctx, workspaceID, target, &role)
				}()
				wg.Wait()
				return errors.Join(ownerErr, targetErr)
			},
		},
	})
	if err != nil {
		return s.classify("abdicate", err)
	}

	events.EmitAsync(s.emitter, ctx, &events.MembershipEvent{
		WorkspaceID: workspaceID,
		UserID:      target,
		ActorID:     owner,
		EventType:   events.TypeOwnershipTransferred,
		Role:        string(memberdomain.RoleOwner),
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// RemoveMember deletes an IN_WORKSPACE membership: the seat is released, the
// row deleted, and the cluster binding removed. Managers may remove members
// they outrank; any non-owner member may remove themselves (leave); the owner
// must abdicate before leaving.
func (s *WorkspaceService) RemoveMember(ctx context.Context, actor, workspaceID, target string) error {
	if target == "" {
		return apperr.Validation("target user is required")
	}
	ws, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if ws.IsPrivate {
		return apperr.Forbidden("personal workspaces have no removable members")
	}

	tm, err := s.members.Get(ctx, workspaceID, target)
	if err != nil {
		return apperr.TransientStore("membership lookup", err)
	}
	if tm == nil || tm.Status != memberdomain.StatusInWorkspace {
		return apperr.NotFound("member")
	}

	if actor == target {
		if tm.Role == memberdomain.RoleOwner {
			return apperr.Conflict("owner must transfer ownership before leaving")
		}
	} else {
		am, err := rbac.RequireRoleAtLeast(ctx, s.members, workspaceID, actor, memberdomain.RoleManager)
		if err != nil {
			return err
		}
		if !am.Role.Outranks(tm.Role) {
			return apperr.Forbidden("cannot remove a member of equal or higher role")
		}
	}

	usage, err := s.ledger.Get(ctx, s.region, target, workspaceID)
	if err != nil {
		return apperr.TransientStore("ledger lookup", err)
	}
	if usage == nil {
		return storesDisagree("remove member", "member has no ledger row")
	}

	err = s.sagas.Execute(ctx, "remove_member", []saga.Step{
		{
			Name: "release_seat",
			Run: func(ctx context.Context) error {
				return s.ledger.Release(ctx, s.region, target, workspaceID)
			},
			Compensate: func(ctx context.Context) error {
				if err := s.ledger.Reserve(ctx, usage); err != nil &&
					!errors.Is(err, ledgerrepo.ErrAlreadyReserved) {
					return err
				}
				return nil
			},
		},
		{
			Name: "delete_membership",
			Run: func(ctx context.Context) error {
				return s.members.Delete(ctx, workspaceID, target)
			},
			Compensate: func(ctx context.Context) error {
				return s.members.Upsert(ctx, tm)
			},
		},
		{
			Name: "remove_cluster_binding",
			Run: func(ctx context.Context) error {
				return s.cluster.Sync(ctx, workspaceID, target, nil)
			},
		},
	})
	if err != nil {
		return s.classify("remove member", err)
	}

	events.EmitAsync(s.emitter, ctx, &events.MembershipEvent{
		WorkspaceID: workspaceID,
		UserID:      target,
		ActorID:     actor,
		EventType:   events.TypeMemberRemoved,
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}
