package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/findersfee/internal/model"
)

var (
	reporter = &model.Identity{UserID: 1, Name: "A"}
	claimant = &model.Identity{UserID: 2, Name: "B"}
	other    = &model.Identity{UserID: 3, Name: "C"}
)

func lostItem() *model.Item {
	reward := int64(5000)
	return &model.Item{
		ID: 10, Kind: model.ItemKindLost, Title: "Black Wallet", Status: model.ItemStatusReturned,
		ReporterID: 1, ReporterName: "A", ReporterPhone: "+250788000001", Reward: &reward,
	}
}

func claim(id, claimantID int64, status string, reviewed time.Time) model.Claim {
	itemID := int64(10)
	c := model.Claim{ID: id, ItemID: &itemID, ClaimantID: claimantID, Status: status}
	if !reviewed.IsZero() {
		c.ReviewedAt = &reviewed
	}
	return c
}

func TestResolveContact(t *testing.T) {
	t0 := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	found := lostItem()
	found.Kind = model.ItemKindFound

	approvedK1 := []model.Claim{claim(1, 2, model.ClaimStatusApproved, t0)}

	tests := []struct {
		name    string
		item    *model.Item
		claims  []model.Claim
		viewer  *model.Identity
		payment string
		want    Disclosure
	}{
		{
			name:   "found item is public to anyone",
			item:   found,
			viewer: nil,
			want:   Disclosure{State: StatePublic, Phone: "+250788000001", Name: "A"},
		},
		{
			name:   "found item stays public after approval",
			item:   found,
			claims: approvedK1,
			viewer: other,
			want:   Disclosure{State: StatePublic, Phone: "+250788000001", Name: "A"},
		},
		{
			name:    "approved claimant with completed payment sees phone",
			item:    lostItem(),
			claims:  approvedK1,
			viewer:  claimant,
			payment: model.PaymentStatusCompleted,
			want:    Disclosure{State: StateRevealed, Phone: "+250788000001", Name: "A", ClaimID: 1},
		},
		{
			name:    "approved claimant with pending payment",
			item:    lostItem(),
			claims:  approvedK1,
			viewer:  claimant,
			payment: model.PaymentStatusPending,
			want:    Disclosure{State: StatePaymentRequired, ClaimID: 1},
		},
		{
			name:   "approved claimant with no payment",
			item:   lostItem(),
			claims: approvedK1,
			viewer: claimant,
			want:   Disclosure{State: StatePaymentRequired, ClaimID: 1},
		},
		{
			name:    "someone else sees claimed",
			item:    lostItem(),
			claims:  approvedK1,
			viewer:  other,
			payment: model.PaymentStatusCompleted,
			want:    Disclosure{State: StateClaimedByOther},
		},
		{
			name:   "reporter sees claimed",
			item:   lostItem(),
			claims: approvedK1,
			viewer: reporter,
			want:   Disclosure{State: StateClaimedByOther},
		},
		{
			name:   "anonymous sees claimed",
			item:   lostItem(),
			claims: approvedK1,
			want:   Disclosure{State: StateClaimedByOther},
		},
		{
			name:    "only pending and rejected claims",
			item:    lostItem(),
			claims:  []model.Claim{claim(1, 2, model.ClaimStatusPending, time.Time{}), claim(2, 3, model.ClaimStatusRejected, t0)},
			viewer:  claimant,
			payment: model.PaymentStatusCompleted,
			want:    Disclosure{State: StateAwaitingVerification},
		},
		{
			name:   "no claims",
			item:   lostItem(),
			viewer: claimant,
			want:   Disclosure{State: StateAwaitingVerification},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveContact(tt.item, tt.claims, tt.viewer, tt.payment)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveContact() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFirstApprovalWins(t *testing.T) {
	t0 := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	item := lostItem()
	// C1 approved first, C2 approved later (as if siblings were not rejected).
	claims := []model.Claim{
		claim(2, other.UserID, model.ClaimStatusApproved, t0.Add(time.Minute)),
		claim(1, claimant.UserID, model.ClaimStatusApproved, t0),
	}

	for _, payment := range []string{"", model.PaymentStatusPending, model.PaymentStatusCompleted, model.PaymentStatusFailed} {
		got := ResolveContact(item, claims, other, payment)
		if got.Phone != "" || got.State != StateClaimedByOther {
			t.Errorf("payment %q: second claimant got %+v", payment, got)
		}
	}

	win := WinningClaim(item, claims)
	if win == nil || win.ID != 1 {
		t.Fatalf("expected claim 1 to win, got %+v", win)
	}

	// Same review time: lowest ID wins.
	tied := []model.Claim{
		claim(5, other.UserID, model.ClaimStatusApproved, t0),
		claim(4, claimant.UserID, model.ClaimStatusApproved, t0),
	}
	if win := WinningClaim(item, tied); win.ID != 4 {
		t.Errorf("expected claim 4 to win a tie, got %d", win.ID)
	}
}

func TestPaymentGatingIsIdempotent(t *testing.T) {
	item := lostItem()
	claims := []model.Claim{claim(1, claimant.UserID, model.ClaimStatusApproved, time.Now())}

	before := ResolveContact(item, claims, claimant, model.PaymentStatusPending)
	if before.State != StatePaymentRequired || before.Phone != "" {
		t.Fatalf("expected payment required, got %+v", before)
	}

	first := ResolveContact(item, claims, claimant, model.PaymentStatusCompleted)
	second := ResolveContact(item, claims, claimant, model.PaymentStatusCompleted)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated resolution differs:\n%s", diff)
	}
	if first.Phone != item.ReporterPhone {
		t.Errorf("expected reporter phone, got %q", first.Phone)
	}
}

type fakeItems map[int64]*model.Item

func (f fakeItems) Get(_ context.Context, id int64) (*model.Item, error) {
	item, ok := f[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return item, nil
}

type fakeClaims []model.Claim

func (f fakeClaims) ListForItem(context.Context, int64) ([]model.Claim, error) { return f, nil }

type fakePayments struct {
	status string
	calls  int
}

func (f *fakePayments) StatusForClaim(context.Context, int64) (string, error) {
	f.calls++
	return f.status, nil
}

func TestResolverReadsLiveState(t *testing.T) {
	ctx := context.Background()
	item := lostItem()
	payments := &fakePayments{status: model.PaymentStatusPending}
	r := NewResolver(fakeItems{10: item}, fakeClaims{claim(1, claimant.UserID, model.ClaimStatusApproved, time.Now())}, payments)

	got, err := r.ForViewer(ctx, 10, claimant)
	if err != nil {
		t.Fatalf("ForViewer: %v", err)
	}
	if got.State != StatePaymentRequired {
		t.Errorf("expected payment required, got %s", got.State)
	}

	payments.status = model.PaymentStatusCompleted
	got, _ = r.ForViewer(ctx, 10, claimant)
	if got.State != StateRevealed || got.Phone != item.ReporterPhone {
		t.Errorf("expected revealed phone after payment, got %+v", got)
	}

	// Non-parties never trigger a payment lookup.
	calls := payments.calls
	got, _ = r.ForViewer(ctx, 10, other)
	if got.State != StateClaimedByOther {
		t.Errorf("expected claimed by other, got %s", got.State)
	}
	if payments.calls != calls {
		t.Error("expected no payment lookup for a non-party")
	}

	if _, err := r.ForViewer(ctx, 99, claimant); err == nil {
		t.Error("expected error for missing item")
	}
}
