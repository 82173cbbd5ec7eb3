// migrate runs DB migrations from embedded SQL; use with ./scripts/migrate.sh or go run ./cmd/migrate.
// The membership store and the quota ledger have separate schemas and DSNs.
package main

import (
	"flag"
	"fmt"
	"os"

	"workspace-console/backend/internal/config"
	"workspace-console/backend/internal/db/migrate"
)

func main() {
	set := flag.String("database", "all", "Schema set to migrate: membership, ledger, or all")
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	var targets []struct{ set, dsn string }
	switch *set {
	case migrate.SetMembership:
		targets = append(targets, struct{ set, dsn string }{migrate.SetMembership, cfg.MembershipDatabaseURL})
	case migrate.SetLedger:
		targets = append(targets, struct{ set, dsn string }{migrate.SetLedger, cfg.LedgerDatabaseURL})
	case "all":
		targets = append(targets,
			struct{ set, dsn string }{migrate.SetMembership, cfg.MembershipDatabaseURL},
			struct{ set, dsn string }{migrate.SetLedger, cfg.LedgerDatabaseURL},
		)
	default:
		fmt.Fprintf(os.Stderr, "unknown database %q: want membership, ledger, or all\n", *set)
		os.Exit(1)
	}

	for _, t := range targets {
		if err := migrate.Run(t.dsn, t.set, *direction); err != nil {
			fmt.Fprintf(os.Stderr, "migrate %s: %v\n", t.set, err)
			os.Exit(1)
		}
		fmt.Printf("migrate %s: %s ok\n", t.set, *direction)
	}
}
