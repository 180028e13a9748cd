package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/findersfee/internal/model"
)

// FlagReconcile records that an approved claim's item could not be marked
// terminal. At most one open task exists per claim.
func FlagReconcile(ctx context.Context, db *sql.DB, claimID, itemID int64, reason string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reconcile_tasks (claim_id, item_id, reason) VALUES (?, ?, ?)`,
		claimID, itemID, reason,
	)
	if err != nil {
		return fmt.Errorf("flagging reconcile task: %w", err)
	}
	return nil
}

// ListOpenReconcileTasks returns unresolved tasks, oldest first.
func ListOpenReconcileTasks(ctx context.Context, db *sql.DB) ([]model.ReconcileTask, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, claim_id, item_id, reason, attempts, created_at, resolved_at
		 FROM reconcile_tasks WHERE resolved_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reconcile tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.ReconcileTask
	for rows.Next() {
		var t model.ReconcileTask
		if err := rows.Scan(&t.ID, &t.ClaimID, &t.ItemID, &t.Reason, &t.Attempts, &t.CreatedAt, &t.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scanning reconcile task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ResolveReconcileTask closes a task.
func ResolveReconcileTask(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE reconcile_tasks SET resolved_at = CURRENT_TIMESTAMP, attempts = attempts + 1
		 WHERE id = ? AND resolved_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("resolving reconcile task: %w", err)
	}
	return nil
}

// BumpReconcileAttempt records a failed retry and its reason.
func BumpReconcileAttempt(ctx context.Context, db *sql.DB, id int64, reason string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE reconcile_tasks SET attempts = attempts + 1, reason = ? WHERE id = ?`,
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("bumping reconcile attempt: %w", err)
	}
	return nil
}
