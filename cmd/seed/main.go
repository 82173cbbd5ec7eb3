// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: skips inserts if the dev workspace already exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"workspace-console/backend/internal/config"
	"workspace-console/backend/internal/db"
	ledgerdomain "workspace-console/backend/internal/ledger/domain"
	ledgerrepo "workspace-console/backend/internal/ledger/repository"
	memberdomain "workspace-console/backend/internal/membership/domain"
	memberrepo "workspace-console/backend/internal/membership/repository"
	workspacedomain "workspace-console/backend/internal/workspace/domain"
	workspacerepo "workspace-console/backend/internal/workspace/repository"
)

const (
	devOwnerID       = "dev-owner-001"
	devMemberID      = "dev-member-001"
	devInviteeID     = "dev-invitee-001"
	devWorkspaceName = "Acme Dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.MembershipDatabaseURL == "" || cfg.LedgerDatabaseURL == "" {
		log.Fatal("MEMBERSHIP_DATABASE_URL and LEDGER_DATABASE_URL must be set; create a .env from .env.example")
	}

	memberDB, err := db.Open(cfg.MembershipDatabaseURL)
	if err != nil {
		log.Fatalf("membership db: %v", err)
	}
	defer memberDB.Close()

	ledgerDB, err := db.Open(cfg.LedgerDatabaseURL)
	if err != nil {
		log.Fatalf("ledger db: %v", err)
	}
	defer ledgerDB.Close()

	workspaces := workspacerepo.NewPostgresRepository(memberDB)
	members := memberrepo.NewPostgresRepository(memberDB)
	ledger := ledgerrepo.NewPostgresRepository(ledgerDB)

	ctx := context.Background()

	existing, err := workspaces.GetByCreatorAndName(ctx, devOwnerID, devWorkspaceName)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev workspace exists). Skipping.")
		os.Exit(0)
	}

	now := time.Now().UTC()
	ws := &workspacedomain.Workspace{
		UID:         uuid.New().String(),
		ID:          workspacedomain.SlugFromDisplayName(devWorkspaceName),
		DisplayName: devWorkspaceName,
		CreatedBy:   devOwnerID,
		CreatedAt:   now,
	}
	if err := workspaces.Create(ctx, ws); err != nil {
		log.Fatalf("create workspace: %v", err)
	}

	if err := members.Upsert(ctx, &memberdomain.Membership{
		WorkspaceID: ws.UID,
		UserID:      devOwnerID,
		Role:        memberdomain.RoleOwner,
		Status:      memberdomain.StatusInWorkspace,
		JoinedAt:    now,
	}); err != nil {
		log.Fatalf("create owner membership: %v", err)
	}
	if err := ledger.Reserve(ctx, &ledgerdomain.WorkspaceUsage{
		Region:      cfg.Region,
		UserID:      devOwnerID,
		WorkspaceID: ws.UID,
		Seat:        1,
	}); err != nil {
		log.Fatalf("reserve owner seat: %v", err)
	}

	if err := members.Upsert(ctx, &memberdomain.Membership{
		WorkspaceID: ws.UID,
		UserID:      devMemberID,
		Role:        memberdomain.RoleDeveloper,
		Status:      memberdomain.StatusInWorkspace,
		JoinedAt:    now,
	}); err != nil {
		log.Fatalf("create member membership: %v", err)
	}
	if err := ledger.Reserve(ctx, &ledgerdomain.WorkspaceUsage{
		Region:      cfg.Region,
		UserID:      devMemberID,
		WorkspaceID: ws.UID,
		Seat:        2,
	}); err != nil {
		log.Fatalf("reserve member seat: %v", err)
	}

	// Pending invite: no ledger row until accepted.
	if err := members.Upsert(ctx, &memberdomain.Membership{
		WorkspaceID: ws.UID,
		UserID:      devInviteeID,
		Role:        memberdomain.RoleManager,
		Status:      memberdomain.StatusInvited,
		JoinedAt:    now,
	}); err != nil {
		log.Fatalf("create pending invite: %v", err)
	}

	log.Println("Seed completed successfully.")
	log.Printf("Workspace %s (%s): owner %s, member %s, pending invite %s", ws.ID, ws.UID, devOwnerID, devMemberID, devInviteeID)
}
