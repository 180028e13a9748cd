package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: at most one open reconciliation task per claim.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reconcile_open_claim
	     ON reconcile_tasks(claim_id) WHERE resolved_at IS NULL`,
	// Migration 2: pending-claim listing for the admin queue.
	`CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status, created_at)`,
}

// migrate runs the idempotent migrations.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
