package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/findersfee/internal/db"
	"github.com/erazemk/findersfee/internal/model"
)

func TestCreateClaimPending(t *testing.T) {
	database := db.NewTestDB(t)
	owner := mustUser(t, database, "owner@example.com")
	claimant := mustUser(t, database, "claimant@example.com")
	item := mustItem(t, database, owner, model.ItemKindFound, "Phone")

	c := mustClaim(t, database, item, claimant)
	if c.Status != model.ClaimStatusPending {
		t.Errorf("expected status 'pending', got %q", c.Status)
	}
	if c.ItemID == nil || *c.ItemID != item.ID {
		t.Errorf("expected item id %d, got %v", item.ID, c.ItemID)
	}
	if c.ReviewedAt != nil || c.ReviewedBy != nil {
		t.Error("expected no review data on a new claim")
	}
}

func TestCreateClaimWithoutItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	claimant := mustUser(t, database, "claimant@example.com")

	c, err := CreateClaim(ctx, database, &model.Claim{
		ItemName:      "Green backpack",
		ClaimantID:    claimant.ID,
		Justification: "left it on the bus",
	})
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if c.ItemID != nil {
		t.Errorf("expected nil item id, got %d", *c.ItemID)
	}
	if c.ItemName != "Green backpack" {
		t.Errorf("expected item name snapshot, got %q", c.ItemName)
	}
}

func TestCreateClaimDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, database, "owner@example.com")
	claimant := mustUser(t, database, "claimant@example.com")
	item := mustItem(t, database, owner, model.ItemKindFound, "Phone")

	first := mustClaim(t, database, item, claimant)

	_, err := CreateClaim(ctx, database, &model.Claim{
		ItemID: &item.ID, ItemName: item.Title, ClaimantID: claimant.ID, Justification: "again",
	})
	if !errors.Is(err, ErrDuplicateClaim) {
		t.Fatalf("expected ErrDuplicateClaim, got %v", err)
	}

	// A rejected claim no longer blocks a new one.
	if _, _, err := ReviewClaim(ctx, database, first.ID, model.ClaimStatusRejected, owner.ID); err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}
	if _, err := CreateClaim(ctx, database, &model.Claim{
		ItemID: &item.ID, ItemName: item.Title, ClaimantID: claimant.ID, Justification: "new proof",
	}); err != nil {
		t.Errorf("expected claim after rejection to succeed: %v", err)
	}
}

func TestReviewClaimApproveRejectsSiblings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	admin := mustUser(t, database, "admin@example.com")
	owner := mustUser(t, database, "owner@example.com")
	x := mustUser(t, database, "x@example.com")
	y := mustUser(t, database, "y@example.com")
	item := mustItem(t, database, owner, model.ItemKindLost, "Wallet")
	other := mustItem(t, database, owner, model.ItemKindLost, "Keys")

	cx := mustClaim(t, database, item, x)
	cy := mustClaim(t, database, item, y)
	unrelated := mustClaim(t, database, other, y)

	approved, siblings, err := ReviewClaim(ctx, database, cx.ID, model.ClaimStatusApproved, admin.ID)
	if err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}
	if approved.Status != model.ClaimStatusApproved {
		t.Errorf("expected 'approved', got %q", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != admin.ID || approved.ReviewedAt == nil {
		t.Errorf("expected review data, got by=%v at=%v", approved.ReviewedBy, approved.ReviewedAt)
	}
	if len(siblings) != 1 || siblings[0] != cy.ID {
		t.Errorf("expected sibling %d, got %v", cy.ID, siblings)
	}

	gotY, _ := GetClaim(ctx, database, cy.ID)
	if gotY.Status != model.ClaimStatusRejected {
		t.Errorf("expected sibling to be rejected, got %q", gotY.Status)
	}
	gotU, _ := GetClaim(ctx, database, unrelated.ID)
	if gotU.Status != model.ClaimStatusPending {
		t.Errorf("expected claim on another item to stay pending, got %q", gotU.Status)
	}
}

func TestReviewClaimIsOneShot(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	admin := mustUser(t, database, "admin@example.com")
	owner := mustUser(t, database, "owner@example.com")
	x := mustUser(t, database, "x@example.com")
	item := mustItem(t, database, owner, model.ItemKindLost, "Wallet")
	c := mustClaim(t, database, item, x)

	if _, _, err := ReviewClaim(ctx, database, c.ID, model.ClaimStatusRejected, admin.ID); err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}

	_, _, err := ReviewClaim(ctx, database, c.ID, model.ClaimStatusApproved, admin.ID)
	if !errors.Is(err, ErrClaimNotPending) {
		t.Errorf("expected ErrClaimNotPending, got %v", err)
	}

	got, _ := GetClaim(ctx, database, c.ID)
	if got.Status != model.ClaimStatusRejected {
		t.Errorf("expected status to remain 'rejected', got %q", got.Status)
	}

	_, _, err = ReviewClaim(ctx, database, c.ID+100, model.ClaimStatusApproved, admin.ID)
	if !errors.Is(err, ErrClaimNotFound) {
		t.Errorf("expected ErrClaimNotFound, got %v", err)
	}

	_, _, err = ReviewClaim(ctx, database, c.ID, model.ClaimStatusPending, admin.ID)
	if err == nil {
		t.Error("expected error for a non-terminal review status")
	}
}

func TestListClaims(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, database, "owner@example.com")
	x := mustUser(t, database, "x@example.com")
	y := mustUser(t, database, "y@example.com")
	a := mustItem(t, database, owner, model.ItemKindLost, "A")
	b := mustItem(t, database, owner, model.ItemKindLost, "B")

	first := mustClaim(t, database, a, x)
	mustClaim(t, database, b, x)
	mustClaim(t, database, a, y)

	pending, _ := ListClaims(ctx, database, model.ClaimFilter{Status: model.ClaimStatusPending})
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending claims, got %d", len(pending))
	}
	if pending[0].ID != first.ID {
		t.Errorf("expected oldest pending claim first, got %d", pending[0].ID)
	}

	mine, _ := ListClaims(ctx, database, model.ClaimFilter{ClaimantID: x.ID})
	if len(mine) != 2 {
		t.Errorf("expected 2 claims for x, got %d", len(mine))
	}

	forItem, _ := ListClaims(ctx, database, model.ClaimFilter{ItemID: a.ID})
	if len(forItem) != 2 {
		t.Errorf("expected 2 claims for item A, got %d", len(forItem))
	}
}
