// Package migrate runs database migrations from embedded SQL files using golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"workspace-console/backend/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange is returned when Up/Down has nothing to do (already at target version).
var ErrNoChange = migrate.ErrNoChange

// Schema sets that can be migrated; each maps to a directory under
// internal/db/migrations and its own database.
const (
	SetMembership = "membership"
	SetLedger     = "ledger"
)

// Run applies migrations for the given schema set in the given direction
// using the provided DSN. set must be SetMembership or SetLedger; direction
// must be "up" or "down". Returns nil on success; ErrNoChange when already at
// latest (up) or nothing to downgrade (down); other errors for DB or I/O
// failures.
func Run(dsn, set, direction string) error {
	if dsn == "" {
		return fmt.Errorf("database URL for %q is not set; create a .env from .env.example or set it", set)
	}
	if set != SetMembership && set != SetLedger {
		return fmt.Errorf("schema set must be %s or %s, got %q", SetMembership, SetLedger, set)
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}

	sourceDriver, err := iofs.New(db.MigrationFS, "migrations/"+set)
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	}
	return nil
}
