package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/findersfee/internal/model"
)

const paymentColumns = `id, claim_id, payer_id, payer_phone, amount, currency, method, status,
	provider_ref, created_at, updated_at, completed_at`

func scanPayment(s scanner) (*model.Payment, error) {
	p := &model.Payment{}
	var ref sql.NullString
	err := s.Scan(&p.ID, &p.ClaimID, &p.PayerID, &p.PayerPhone, &p.Amount, &p.Currency,
		&p.Method, &p.Status, &ref, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt)
	if err != nil {
		return nil, err
	}
	p.ProviderRef = ref.String
	return p, nil
}

// CreatePayment records a pending payment.
func CreatePayment(ctx context.Context, db *sql.DB, p *model.Payment) (*model.Payment, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO payments (claim_id, payer_id, payer_phone, amount, currency, method, status, provider_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClaimID, p.PayerID, p.PayerPhone, p.Amount, p.Currency, p.Method,
		model.PaymentStatusPending, nullString(p.ProviderRef),
	)
	if err != nil {
		return nil, fmt.Errorf("creating payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting payment id: %w", err)
	}

	return GetPayment(ctx, db, id)
}

// GetPayment returns a payment by ID.
func GetPayment(ctx context.Context, db *sql.DB, id int64) (*model.Payment, error) {
	p, err := scanPayment(db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting payment: %w", err)
	}
	return p, nil
}

// ListPaymentsByPayer returns a payer's payments, newest first.
func ListPaymentsByPayer(ctx context.Context, db *sql.DB, payerID int64) ([]model.Payment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE payer_id = ? ORDER BY created_at DESC, id DESC`,
		payerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// ResolvePayment settles a pending payment. Returns false if the payment was
// not pending anymore.
func ResolvePayment(ctx context.Context, db *sql.DB, id int64, status, providerRef string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE payments
		 SET status = ?,
		     provider_ref = COALESCE(NULLIF(?, ''), provider_ref),
		     completed_at = CASE WHEN ? = 'completed' THEN CURRENT_TIMESTAMP ELSE completed_at END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'pending'
		   AND (? <> 'completed' OR NOT EXISTS (
		       SELECT 1 FROM payments done
		       WHERE done.claim_id = payments.claim_id AND done.status = 'completed'))`,
		status, providerRef, status, id, status,
	)
	if err != nil {
		return false, fmt.Errorf("resolving payment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking resolved payment: %w", err)
	}
	return n > 0, nil
}

// PaymentStatusForClaim summarizes the payments made on a claim: completed
// if any completed, else pending if any pending, else failed if any failed,
// else the empty string.
func PaymentStatusForClaim(ctx context.Context, db *sql.DB, claimID int64) (string, error) {
	var status sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT status FROM payments WHERE claim_id = ?
		 ORDER BY CASE status WHEN 'completed' THEN 0 WHEN 'pending' THEN 1 ELSE 2 END, id DESC
		 LIMIT 1`,
		claimID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting claim payment status: %w", err)
	}
	return status.String, nil
}
