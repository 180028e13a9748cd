package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ItemCounts holds item totals for reporting.
type ItemCounts struct {
	Total    int64
	Lost     int64
	Found    int64
	Active   int64
	Resolved int64
}

// ClaimCounts holds claim totals by status.
type ClaimCounts struct {
	Total    int64
	Pending  int64
	Approved int64
	Rejected int64
}

// CountItems returns item totals. reporterID 0 counts every reporter.
func CountItems(ctx context.Context, db *sql.DB, reporterID int64) (ItemCounts, error) {
	var c ItemCounts
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(kind = 'lost'), 0),
		        COALESCE(SUM(kind = 'found'), 0),
		        COALESCE(SUM(status = 'active'), 0),
		        COALESCE(SUM(status != 'active'), 0)
		 FROM items
		 WHERE deleted_at IS NULL AND (? = 0 OR reporter_id = ?)`,
		reporterID, reporterID,
	).Scan(&c.Total, &c.Lost, &c.Found, &c.Active, &c.Resolved)
	if err != nil {
		return ItemCounts{}, fmt.Errorf("counting items: %w", err)
	}
	return c, nil
}

// CountClaims returns claim totals. claimantID 0 counts every claimant.
func CountClaims(ctx context.Context, db *sql.DB, claimantID int64) (ClaimCounts, error) {
	var c ClaimCounts
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status = 'pending'), 0),
		        COALESCE(SUM(status = 'approved'), 0),
		        COALESCE(SUM(status = 'rejected'), 0)
		 FROM claims
		 WHERE ? = 0 OR claimant_id = ?`,
		claimantID, claimantID,
	).Scan(&c.Total, &c.Pending, &c.Approved, &c.Rejected)
	if err != nil {
		return ClaimCounts{}, fmt.Errorf("counting claims: %w", err)
	}
	return c, nil
}

// CountCompletedPayments returns the number of completed payments.
func CountCompletedPayments(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE status = 'completed'`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting payments: %w", err)
	}
	return n, nil
}

// SumReporterEarnings totals completed payments on claims against a
// reporter's items, less the platform fee kept per payment.
func SumReporterEarnings(ctx context.Context, db *sql.DB, reporterID, platformFee int64) (int64, error) {
	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(MAX(p.amount - ?, 0)), 0)
		 FROM payments p
		 JOIN claims c ON c.id = p.claim_id
		 JOIN items i ON i.id = c.item_id
		 WHERE p.status = 'completed' AND i.reporter_id = ?`,
		platformFee, reporterID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing earnings: %w", err)
	}
	return total, nil
}
