// Package gate decides whether a viewer may see an item reporter's phone.
// The decision is recomputed on every read and never stored.
package gate

import (
	"context"

	"github.com/erazemk/findersfee/internal/model"
)

// State is the outcome shown to the viewer.
type State string

const (
	StatePublic               State = "public"
	StateRevealed             State = "revealed"
	StatePaymentRequired      State = "payment_required"
	StateClaimedByOther       State = "claimed_by_other"
	StateAwaitingVerification State = "awaiting_verification"
)

// Disclosure is what a viewer may see of an item's contact. Phone and Name
// are set only for StatePublic and StateRevealed.
type Disclosure struct {
	State   State  `json:"state"`
	Phone   string `json:"phone,omitempty"`
	Name    string `json:"name,omitempty"`
	ClaimID int64  `json:"claim_id,omitempty"`
}

// WinningClaim returns the approved claim that governs the item: the one
// reviewed first, ties broken by lowest ID. Nil if none is approved.
func WinningClaim(item *model.Item, claims []model.Claim) *model.Claim {
	var win *model.Claim
	for i := range claims {
		c := &claims[i]
		if c.Status != model.ClaimStatusApproved {
			continue
		}
		if c.ItemID == nil || *c.ItemID != item.ID {
			continue
		}
		if win == nil || before(c, win) {
			win = c
		}
	}
	return win
}

func before(a, b *model.Claim) bool {
	switch {
	case a.ReviewedAt != nil && b.ReviewedAt != nil && !a.ReviewedAt.Equal(*b.ReviewedAt):
		return a.ReviewedAt.Before(*b.ReviewedAt)
	case a.ReviewedAt != nil && b.ReviewedAt == nil:
		return true
	case a.ReviewedAt == nil && b.ReviewedAt != nil:
		return false
	}
	return a.ID < b.ID
}

// ResolveContact applies the disclosure rules. paymentStatus is the status
// of the payment on the winning claim; it only matters when the viewer is
// that claim's claimant.
func ResolveContact(item *model.Item, claims []model.Claim, viewer *model.Identity, paymentStatus string) Disclosure {
	if item.Kind == model.ItemKindFound {
		return Disclosure{State: StatePublic, Phone: item.ReporterPhone, Name: item.ReporterName}
	}

	win := WinningClaim(item, claims)
	if win == nil {
		return Disclosure{State: StateAwaitingVerification}
	}
	if viewer == nil || viewer.UserID != win.ClaimantID {
		return Disclosure{State: StateClaimedByOther}
	}
	if paymentStatus == model.PaymentStatusCompleted {
		return Disclosure{State: StateRevealed, Phone: item.ReporterPhone, Name: item.ReporterName, ClaimID: win.ID}
	}
	return Disclosure{State: StatePaymentRequired, ClaimID: win.ID}
}

// ItemSource loads listed items.
type ItemSource interface {
	Get(ctx context.Context, id int64) (*model.Item, error)
}

// ClaimSource lists the claims on an item.
type ClaimSource interface {
	ListForItem(ctx context.Context, itemID int64) ([]model.Claim, error)
}

// PaymentSource reports the payment status of a claim.
type PaymentSource interface {
	StatusForClaim(ctx context.Context, claimID int64) (string, error)
}

// Resolver loads the gate's inputs and applies ResolveContact.
type Resolver struct {
	Items    ItemSource
	Claims   ClaimSource
	Payments PaymentSource
}

// NewResolver returns a resolver over the given sources.
func NewResolver(items ItemSource, claims ClaimSource, payments PaymentSource) *Resolver {
	return &Resolver{Items: items, Claims: claims, Payments: payments}
}

// ForViewer computes the disclosure of an item's contact for viewer, which
// may be nil for anonymous visitors.
func (r *Resolver) ForViewer(ctx context.Context, itemID int64, viewer *model.Identity) (Disclosure, error) {
	item, err := r.Items.Get(ctx, itemID)
	if err != nil {
		return Disclosure{}, err
	}
	if item.Kind == model.ItemKindFound {
		return ResolveContact(item, nil, viewer, ""), nil
	}

	claims, err := r.Claims.ListForItem(ctx, itemID)
	if err != nil {
		return Disclosure{}, err
	}

	var status string
	if win := WinningClaim(item, claims); win != nil && viewer != nil && viewer.UserID == win.ClaimantID {
		status, err = r.Payments.StatusForClaim(ctx, win.ID)
		if err != nil {
			return Disclosure{}, err
		}
	}
	return ResolveContact(item, claims, viewer, status), nil
}
