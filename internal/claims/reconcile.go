package claims

import (
	"context"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/metrics"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// OpenReconcileTasks lists approvals whose item still needs closing.
func (e *Engine) OpenReconcileTasks(ctx context.Context, reviewer *model.Identity) ([]model.ReconcileTask, error) {
	if err := e.Roles.RequireAdmin(ctx, reviewer); err != nil {
		return nil, err
	}
	tasks, err := store.ListOpenReconcileTasks(ctx, e.DB)
	if err != nil {
		return nil, apperr.External("listing reconcile tasks", err)
	}
	if tasks == nil {
		tasks = []model.ReconcileTask{}
	}
	return tasks, nil
}

// Reconcile retries closing the items of flagged approvals.
func (e *Engine) Reconcile(ctx context.Context, reviewer *model.Identity) (ReconcileReport, error) {
	tasks, err := e.OpenReconcileTasks(ctx, reviewer)
	if err != nil {
		return ReconcileReport{}, err
	}

	var report ReconcileReport
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := e.Items.MarkTerminal(ctx, task.ItemID, task.ClaimID); err != nil {
			report.Failed++
			metrics.ReconcileRuns.WithLabelValues("failed").Inc()
			e.Logger.Warn("reconcile retry failed", "task_id", task.ID, "claim_id", task.ClaimID, "error", err)
			if berr := store.BumpReconcileAttempt(ctx, e.DB, task.ID, err.Error()); berr != nil {
				e.Logger.Error("recording reconcile attempt failed", "task_id", task.ID, "error", berr)
			}
			continue
		}

		if err := store.ResolveReconcileTask(ctx, e.DB, task.ID); err != nil {
			report.Failed++
			e.Logger.Error("closing reconcile task failed", "task_id", task.ID, "error", err)
			continue
		}
		report.Resolved++
		metrics.ReconcileRuns.WithLabelValues("resolved").Inc()
		e.Logger.Info("reconciled approved claim", "task_id", task.ID, "claim_id", task.ClaimID, "item_id", task.ItemID)
	}
	return report, nil
}
