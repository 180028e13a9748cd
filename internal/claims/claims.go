// Package claims implements the claim state machine: claimants submit
// claims against items and admins approve or reject them.
//
// A claim moves from pending to approved or rejected and never leaves a
// terminal state. Approval is a short saga. The claim row is written first
// and is the source of truth; the referenced item is then marked terminal,
// and if that second step fails the claim is flagged for reconciliation
// rather than rolled back. Notifications are sent last and never undo a
// transition.
package claims

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/metrics"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

const maxJustification = 4000

// Items is the part of the item registry the engine depends on.
type Items interface {
	Get(ctx context.Context, id int64) (*model.Item, error)
	MarkTerminal(ctx context.Context, itemID, causeClaimID int64) error
}

// Notifier delivers notifications to claimants.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, kind model.NotificationType, payload model.NotificationPayload) (*model.Notification, error)
}

// Authorizer checks the admin role against the authoritative store.
type Authorizer interface {
	RequireAdmin(ctx context.Context, id *model.Identity) error
}

// ItemRef names the item a claim is about. ID is nil when the claimant
// describes an item that has no listing.
type ItemRef struct {
	ID        *int64
	Name      string
	OwnerName string
	PhotoRef  string
}

// Engine runs claim transitions.
type Engine struct {
	DB       *sql.DB
	Items    Items
	Notifier Notifier
	Roles    Authorizer
	Logger   *slog.Logger
}

// New returns an engine wired to its collaborators.
func New(db *sql.DB, items Items, notifier Notifier, roles Authorizer, logger *slog.Logger) *Engine {
	return &Engine{DB: db, Items: items, Notifier: notifier, Roles: roles, Logger: logger}
}

// Submit files a pending claim. Display fields of the item are copied onto
// the claim and do not follow later edits of the item.
func (e *Engine) Submit(ctx context.Context, ref ItemRef, claimant *model.Identity, justification, photoRef string) (*model.Claim, error) {
	if claimant == nil {
		return nil, apperr.Unauthorized("sign in to submit a claim")
	}

	justification = strings.TrimSpace(justification)
	switch {
	case justification == "":
		return nil, apperr.Validation("justification is required")
	case len(justification) > maxJustification:
		return nil, apperr.Validation("justification is too long")
	case claimant.Phone == "":
		return nil, apperr.Validation("add a phone number to your profile before claiming")
	}

	c := &model.Claim{
		ItemID:        ref.ID,
		ItemName:      strings.TrimSpace(ref.Name),
		ItemOwnerName: ref.OwnerName,
		ItemPhotoRef:  ref.PhotoRef,
		ClaimantID:    claimant.UserID,
		ClaimantName:  claimant.Name,
		ClaimantPhone: claimant.Phone,
		PhotoRef:      photoRef,
		Justification: justification,
	}

	if ref.ID != nil {
		item, err := e.Items.Get(ctx, *ref.ID)
		if err != nil {
			return nil, err
		}
		if item.ReporterID == claimant.UserID {
			return nil, apperr.Validation("you cannot claim an item you reported")
		}
		if item.Status != model.ItemStatusActive {
			return nil, apperr.InvalidState("item is no longer open for claims")
		}
		c.ItemName = item.Title
		c.ItemOwnerName = item.ReporterName
		c.ItemPhotoRef = item.PhotoRef
	} else if c.ItemName == "" {
		return nil, apperr.Validation("item name is required when no listed item is referenced")
	}

	claim, err := store.CreateClaim(ctx, e.DB, c)
	if errors.Is(err, store.ErrDuplicateClaim) {
		return nil, apperr.InvalidState("you already have an open claim on this item")
	}
	if err != nil {
		return nil, apperr.External("storing claim", err)
	}

	metrics.ClaimTransitions.WithLabelValues(model.ClaimStatusPending).Inc()
	e.Logger.Info("claim submitted", "claim_id", claim.ID, "item_id", claim.ItemID, "claimant_id", claimant.UserID)
	return claim, nil
}

// Approve accepts a pending claim, closes its item and notifies the
// claimant. Other pending claims on the same item are rejected with it.
func (e *Engine) Approve(ctx context.Context, claimID int64, reviewer *model.Identity) (*model.Claim, error) {
	if err := e.Roles.RequireAdmin(ctx, reviewer); err != nil {
		return nil, err
	}

	claim, siblings, err := store.ReviewClaim(ctx, e.DB, claimID, model.ClaimStatusApproved, reviewer.UserID)
	if err != nil {
		return nil, e.reviewError(err, claimID)
	}

	metrics.ClaimTransitions.WithLabelValues(model.ClaimStatusApproved).Inc()
	metrics.ClaimTransitions.WithLabelValues(model.ClaimStatusRejected).Add(float64(len(siblings)))
	e.Logger.Info("claim approved", "claim_id", claim.ID, "reviewer_id", reviewer.UserID, "auto_rejected", len(siblings))

	// The claim is committed; the remaining steps outlive the request.
	ctx = context.WithoutCancel(ctx)

	if claim.ItemID != nil {
		e.closeItem(ctx, claim)
	}

	e.notify(ctx, claim, model.NotificationClaimApproved)
	for _, id := range siblings {
		sibling, err := store.GetClaim(ctx, e.DB, id)
		if err != nil || sibling == nil {
			e.Logger.Warn("loading auto-rejected claim failed", "claim_id", id, "error", err)
			continue
		}
		e.notify(ctx, sibling, model.NotificationClaimRejected)
	}

	return claim, nil
}

// Reject declines a pending claim and notifies the claimant.
func (e *Engine) Reject(ctx context.Context, claimID int64, reviewer *model.Identity) (*model.Claim, error) {
	if err := e.Roles.RequireAdmin(ctx, reviewer); err != nil {
		return nil, err
	}

	claim, _, err := store.ReviewClaim(ctx, e.DB, claimID, model.ClaimStatusRejected, reviewer.UserID)
	if err != nil {
		return nil, e.reviewError(err, claimID)
	}

	metrics.ClaimTransitions.WithLabelValues(model.ClaimStatusRejected).Inc()
	e.Logger.Info("claim rejected", "claim_id", claim.ID, "reviewer_id", reviewer.UserID)

	ctx = context.WithoutCancel(ctx)

	e.notify(ctx, claim, model.NotificationClaimRejected)
	return claim, nil
}

func (e *Engine) reviewError(err error, claimID int64) error {
	switch {
	case errors.Is(err, store.ErrClaimNotFound):
		return apperr.NotFound("claim not found")
	case errors.Is(err, store.ErrClaimNotPending):
		metrics.ClaimConflicts.Inc()
		return apperr.InvalidState("claim has already been reviewed")
	case errors.Is(err, store.ErrItemAlreadyClaimed):
		metrics.ClaimConflicts.Inc()
		return apperr.InvalidState("another claim on this item has already been approved")
	}
	e.Logger.Error("reviewing claim failed", "claim_id", claimID, "error", err)
	return apperr.External("reviewing claim", err)
}

// closeItem runs the second step of the approval saga.
func (e *Engine) closeItem(ctx context.Context, claim *model.Claim) {
	itemID := *claim.ItemID
	err := e.Items.MarkTerminal(ctx, itemID, claim.ID)
	if err == nil {
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		e.Logger.Warn("approved claim references a missing item", "claim_id", claim.ID, "item_id", itemID)
		return
	}

	metrics.ReconcileFlags.Inc()
	e.Logger.Error("marking item terminal failed, flagged for reconciliation",
		"claim_id", claim.ID, "item_id", itemID, "error", err)
	if ferr := store.FlagReconcile(ctx, e.DB, claim.ID, itemID, err.Error()); ferr != nil {
		e.Logger.Error("flagging reconcile task failed", "claim_id", claim.ID, "item_id", itemID, "error", ferr)
	}
}

func (e *Engine) notify(ctx context.Context, claim *model.Claim, kind model.NotificationType) {
	_, err := e.Notifier.Notify(ctx, claim.ClaimantID, kind, model.NotificationPayload{
		ClaimID:  claim.ID,
		ItemID:   claim.ItemID,
		ItemName: claim.ItemName,
	})
	if err != nil {
		e.Logger.Warn("claim notification not delivered", "claim_id", claim.ID, "type", kind, "error", err)
	}
}

// Get returns a claim to its claimant or an admin.
func (e *Engine) Get(ctx context.Context, id int64, viewer *model.Identity) (*model.Claim, error) {
	if viewer == nil {
		return nil, apperr.Unauthorized("sign in required")
	}
	claim, err := store.GetClaim(ctx, e.DB, id)
	if err != nil {
		return nil, apperr.External("loading claim", err)
	}
	if claim == nil {
		return nil, apperr.NotFound("claim not found")
	}
	if claim.ClaimantID == viewer.UserID {
		return claim, nil
	}
	if err := e.Roles.RequireAdmin(ctx, viewer); err != nil {
		return nil, err
	}
	return claim, nil
}

// ListPending returns the review queue, oldest first.
func (e *Engine) ListPending(ctx context.Context, reviewer *model.Identity) ([]model.Claim, error) {
	if err := e.Roles.RequireAdmin(ctx, reviewer); err != nil {
		return nil, err
	}
	return e.list(ctx, model.ClaimFilter{Status: model.ClaimStatusPending})
}

// ListMine returns every claim submitted by the claimant, most recent first.
func (e *Engine) ListMine(ctx context.Context, claimant *model.Identity) ([]model.Claim, error) {
	if claimant == nil {
		return nil, apperr.Unauthorized("sign in required")
	}
	return e.list(ctx, model.ClaimFilter{ClaimantID: claimant.UserID})
}

// ListForItem returns every claim on an item, most recent first.
func (e *Engine) ListForItem(ctx context.Context, itemID int64) ([]model.Claim, error) {
	return e.list(ctx, model.ClaimFilter{ItemID: itemID})
}

func (e *Engine) list(ctx context.Context, f model.ClaimFilter) ([]model.Claim, error) {
	list, err := store.ListClaims(ctx, e.DB, f)
	if err != nil {
		return nil, apperr.External("listing claims", err)
	}
	if list == nil {
		list = []model.Claim{}
	}
	return list, nil
}
