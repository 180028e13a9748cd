package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/findersfee/internal/model"
)

var (
	// ErrClaimNotFound is returned when a reviewed claim does not exist.
	ErrClaimNotFound = errors.New("claim not found")
	// ErrClaimNotPending is returned when a claim has already been reviewed,
	// including when a concurrent reviewer got there first.
	ErrClaimNotPending = errors.New("claim is not pending")
	// ErrItemAlreadyClaimed is returned when approving a claim on an item
	// that already has an approved claim.
	ErrItemAlreadyClaimed = errors.New("item already has an approved claim")
	// ErrDuplicateClaim is returned when the claimant already has an open
	// claim on the same item.
	ErrDuplicateClaim = errors.New("claimant already has an open claim on this item")
)

const claimColumns = `id, item_id, item_name, item_owner_name, item_photo_ref, claimant_id,
	claimant_name, claimant_phone, photo_ref, justification, status, reviewed_by, reviewed_at,
	created_at, updated_at`

func scanClaim(s scanner) (*model.Claim, error) {
	c := &model.Claim{}
	var itemPhoto, photo sql.NullString
	err := s.Scan(&c.ID, &c.ItemID, &c.ItemName, &c.ItemOwnerName, &itemPhoto, &c.ClaimantID,
		&c.ClaimantName, &c.ClaimantPhone, &photo, &c.Justification, &c.Status, &c.ReviewedBy,
		&c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ItemPhotoRef = itemPhoto.String
	c.PhotoRef = photo.String
	return c, nil
}

// CreateClaim inserts a pending claim. When the claim references an item, the
// duplicate check and the insert run in one transaction.
func CreateClaim(ctx context.Context, db *sql.DB, c *model.Claim) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if c.ItemID != nil {
		var open bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM claims
			                WHERE item_id = ? AND claimant_id = ? AND status IN ('pending', 'approved'))`,
			*c.ItemID, c.ClaimantID,
		).Scan(&open)
		if err != nil {
			return nil, fmt.Errorf("checking open claims: %w", err)
		}
		if open {
			return nil, ErrDuplicateClaim
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO claims (item_id, item_name, item_owner_name, item_photo_ref, claimant_id,
		                     claimant_name, claimant_phone, photo_ref, justification, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ItemID, c.ItemName, c.ItemOwnerName, nullString(c.ItemPhotoRef), c.ClaimantID,
		c.ClaimantName, c.ClaimantPhone, nullString(c.PhotoRef), c.Justification, model.ClaimStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ListClaims returns claims matching the filter. Pending queues are listed
// oldest first, everything else newest first.
func ListClaims(ctx context.Context, db *sql.DB, f model.ClaimFilter) ([]model.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.ClaimantID > 0 {
		query += ` AND claimant_id = ?`
		args = append(args, f.ClaimantID)
	}
	if f.ItemID > 0 {
		query += ` AND item_id = ?`
		args = append(args, f.ItemID)
	}

	if f.Status == model.ClaimStatusPending {
		query += ` ORDER BY created_at ASC, id ASC`
	} else {
		query += ` ORDER BY created_at DESC, id DESC`
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// ReviewClaim moves a pending claim to approved or rejected in a single
// transaction. The update is conditional on the claim still being pending,
// so of two concurrent reviews exactly one succeeds. Approving a claim that
// references an item also rejects the item's other pending claims; their IDs
// are returned so the caller can notify those claimants.
func ReviewClaim(ctx context.Context, db *sql.DB, id int64, status string, reviewerID int64) (*model.Claim, []int64, error) {
	if status != model.ClaimStatusApproved && status != model.ClaimStatusRejected {
		return nil, nil, fmt.Errorf("invalid review status %q", status)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	var itemID sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT status, item_id FROM claims WHERE id = ?`, id,
	).Scan(&current, &itemID)
	if err == sql.ErrNoRows {
		return nil, nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading claim: %w", err)
	}
	if current != model.ClaimStatusPending {
		return nil, nil, ErrClaimNotPending
	}

	approving := status == model.ClaimStatusApproved
	if approving && itemID.Valid {
		var taken bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM claims WHERE item_id = ? AND status = 'approved')`,
			itemID.Int64,
		).Scan(&taken)
		if err != nil {
			return nil, nil, fmt.Errorf("checking approved claims: %w", err)
		}
		if taken {
			return nil, nil, ErrItemAlreadyClaimed
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, reviewed_by = ?, reviewed_at = CURRENT_TIMESTAMP,
		                   updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'pending'`,
		status, reviewerID, id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("updating claim: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("checking updated claim: %w", err)
	}
	if n == 0 {
		return nil, nil, ErrClaimNotPending
	}

	var siblings []int64
	if approving && itemID.Valid {
		siblings, err = pendingSiblings(ctx, tx, itemID.Int64, id)
		if err != nil {
			return nil, nil, err
		}
		if len(siblings) > 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE claims SET status = 'rejected', reviewed_by = ?, reviewed_at = CURRENT_TIMESTAMP,
				                   updated_at = CURRENT_TIMESTAMP
				 WHERE item_id = ? AND status = 'pending' AND id != ?`,
				reviewerID, itemID.Int64, id,
			)
			if err != nil {
				return nil, nil, fmt.Errorf("rejecting sibling claims: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing review: %w", err)
	}

	c, err := GetClaim(ctx, db, id)
	if err != nil {
		return nil, nil, err
	}
	return c, siblings, nil
}

func pendingSiblings(ctx context.Context, tx *sql.Tx, itemID, exceptID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM claims WHERE item_id = ? AND status = 'pending' AND id != ? ORDER BY id`,
		itemID, exceptID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sibling claims: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning sibling claim: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
