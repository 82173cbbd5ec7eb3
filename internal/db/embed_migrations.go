package db

import "embed"

// MigrationFS embeds SQL migration files. migrations/membership holds the
// regional membership store schema; migrations/ledger holds the global quota
// ledger schema. The migrate runner (cmd/migrate) applies each set against
// its own database.
//
//go:embed migrations/membership/*.sql migrations/ledger/*.sql
var MigrationFS embed.FS
