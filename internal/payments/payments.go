// Package payments records mobile money payments that unlock a lost item's
// contact details for the approved claimant.
package payments

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/metrics"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

// Authorizer checks the admin role against the authoritative store.
type Authorizer interface {
	RequireAdmin(ctx context.Context, id *model.Identity) error
}

// ItemPayments records payment state on items.
type ItemPayments interface {
	SetPaymentStatus(ctx context.Context, itemID int64, status string) error
}

// Service initiates and settles payments.
type Service struct {
	DB       *sql.DB
	Provider Provider
	Items    ItemPayments
	Roles    Authorizer
	Fee      int64
	Logger   *slog.Logger
}

// New returns a payment service charging fee on top of the item incentive.
func New(db *sql.DB, provider Provider, items ItemPayments, roles Authorizer, fee int64, logger *slog.Logger) *Service {
	return &Service{DB: db, Provider: provider, Items: items, Roles: roles, Fee: fee, Logger: logger}
}

// Initiation is a request to pay for an approved claim.
type Initiation struct {
	ClaimID int64  `json:"claim_id" validate:"required,gt=0"`
	Method  string `json:"method" validate:"required,oneof=mtn airtel"`
	Phone   string `json:"phone" validate:"required,phone"`
}

// Amount returns what the claimant pays: the platform fee plus the item's
// reward or commission.
func (s *Service) Amount(item *model.Item) int64 {
	if item == nil {
		return s.Fee
	}
	return s.Fee + item.Incentive()
}

// Initiate charges the claimant of an approved claim and records a pending payment.
func (s *Service) Initiate(ctx context.Context, req Initiation, payer *model.Identity) (*model.Payment, error) {
	if payer == nil {
		return nil, apperr.Unauthorized("sign in to pay")
	}
	if err := model.Validator().Struct(req); err != nil {
		return nil, apperr.Validation(model.DescribeValidation(err))
	}

	claim, err := store.GetClaim(ctx, s.DB, req.ClaimID)
	if err != nil {
		return nil, apperr.External("loading claim", err)
	}
	if claim == nil {
		return nil, apperr.NotFound("claim not found")
	}
	if claim.ClaimantID != payer.UserID {
		return nil, apperr.Forbidden("only the claimant can pay for this claim")
	}
	if claim.Status != model.ClaimStatusApproved {
		return nil, apperr.InvalidState("claim must be approved before payment")
	}

	status, err := store.PaymentStatusForClaim(ctx, s.DB, claim.ID)
	if err != nil {
		return nil, apperr.External("checking payments", err)
	}
	switch status {
	case model.PaymentStatusCompleted:
		return nil, apperr.InvalidState("claim has already been paid")
	case model.PaymentStatusPending:
		return nil, apperr.InvalidState("a payment for this claim is still pending")
	}

	var item *model.Item
	if claim.ItemID != nil {
		item, err = store.GetItem(ctx, s.DB, *claim.ItemID)
		if err != nil {
			return nil, apperr.External("loading item", err)
		}
	}
	amount := s.Amount(item)
	phone := model.NormalizePhone(req.Phone)

	ref, err := s.Provider.Charge(ctx, ChargeRequest{
		Method:   req.Method,
		Phone:    phone,
		Amount:   amount,
		Currency: model.Currency,
		ClaimID:  claim.ID,
	})
	if err != nil {
		metrics.Payments.WithLabelValues(req.Method, "provider_error").Inc()
		s.Logger.Error("mobile money charge failed", "claim_id", claim.ID, "method", req.Method, "error", err)
		return nil, apperr.External("mobile money provider unavailable, try again", err)
	}

	p, err := store.CreatePayment(ctx, s.DB, &model.Payment{
		ClaimID:     claim.ID,
		PayerID:     payer.UserID,
		PayerPhone:  phone,
		Amount:      amount,
		Currency:    model.Currency,
		Method:      req.Method,
		ProviderRef: ref,
	})
	if err != nil {
		return nil, apperr.External("recording payment", err)
	}

	metrics.Payments.WithLabelValues(req.Method, model.PaymentStatusPending).Inc()
	s.Logger.Info("payment initiated", "payment_id", p.ID, "claim_id", claim.ID, "amount", amount, "method", req.Method)
	return p, nil
}

// Resolve settles a pending payment as completed or failed. It is the
// provider callback path and requires the admin role.
func (s *Service) Resolve(ctx context.Context, paymentID int64, status, providerRef string, actor *model.Identity) (*model.Payment, error) {
	if err := s.Roles.RequireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if status != model.PaymentStatusCompleted && status != model.PaymentStatusFailed {
		return nil, apperr.Validation("status must be completed or failed")
	}

	p, err := store.GetPayment(ctx, s.DB, paymentID)
	if err != nil {
		return nil, apperr.External("loading payment", err)
	}
	if p == nil {
		return nil, apperr.NotFound("payment not found")
	}
	if p.Status != model.PaymentStatusPending {
		return nil, apperr.InvalidState("payment has already been settled")
	}

	claim, err := store.GetClaim(ctx, s.DB, p.ClaimID)
	if err != nil {
		return nil, apperr.External("loading claim", err)
	}
	if status == model.PaymentStatusCompleted && (claim == nil || claim.Status != model.ClaimStatusApproved) {
		return nil, apperr.InvalidState("claim is no longer approved")
	}

	ok, err := store.ResolvePayment(ctx, s.DB, paymentID, status, providerRef)
	if err != nil {
		return nil, apperr.External("settling payment", err)
	}
	if !ok {
		return nil, apperr.InvalidState("payment has already been settled or the claim is already paid")
	}

	metrics.Payments.WithLabelValues(p.Method, status).Inc()
	s.Logger.Info("payment settled", "payment_id", paymentID, "status", status, "by", actor.UserID)

	if status == model.PaymentStatusCompleted && claim.ItemID != nil {
		if err := s.Items.SetPaymentStatus(ctx, *claim.ItemID, model.ItemPaymentPaid); err != nil {
			s.Logger.Warn("marking item paid failed", "item_id", *claim.ItemID, "payment_id", paymentID, "error", err)
		}
	}

	resolved, err := store.GetPayment(ctx, s.DB, paymentID)
	if err != nil {
		return nil, apperr.External("loading payment", err)
	}
	return resolved, nil
}

// ListMine returns the payer's payments, most recent first.
func (s *Service) ListMine(ctx context.Context, payer *model.Identity) ([]model.Payment, error) {
	if payer == nil {
		return nil, apperr.Unauthorized("sign in required")
	}
	list, err := store.ListPaymentsByPayer(ctx, s.DB, payer.UserID)
	if err != nil {
		return nil, apperr.External("listing payments", err)
	}
	if list == nil {
		list = []model.Payment{}
	}
	return list, nil
}

// StatusForClaim reports the payment status of a claim for the visibility gate.
func (s *Service) StatusForClaim(ctx context.Context, claimID int64) (string, error) {
	status, err := store.PaymentStatusForClaim(ctx, s.DB, claimID)
	if err != nil {
		return "", apperr.External("checking payments", err)
	}
	return status, nil
}
