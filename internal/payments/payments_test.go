package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/claims"
	"github.com/erazemk/findersfee/internal/db"
	"github.com/erazemk/findersfee/internal/logging"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/notify"
	"github.com/erazemk/findersfee/internal/registry"
	"github.com/erazemk/findersfee/internal/store"
)

type fixture struct {
	svc      *Service
	provider *SimulatedProvider
	registry *registry.Registry
	engine   *claims.Engine
	owner    *model.Identity
	claimant *model.Identity
	other    *model.Identity
	admin    *model.Identity
	item     *model.Item
	claim    *model.Claim
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()
	log := logging.Discard()

	mk := func(email, name, phone string) *model.Identity {
		u, err := store.CreateUser(ctx, database, email, "h", name, phone, "")
		require.NoError(t, err)
		return model.IdentityOf(u)
	}
	f := &fixture{
		owner:    mk("owner@example.com", "Alice", "+250788000001"),
		claimant: mk("claimant@example.com", "Bob", "+250788000002"),
		other:    mk("other@example.com", "Carol", "+250788000003"),
		admin:    mk("admin@example.com", "Admin", "+250788000009"),
		provider: &SimulatedProvider{},
	}
	require.NoError(t, store.UpsertProfileRole(ctx, database, f.admin.UserID, model.RoleAdmin))

	roles := auth.NewRoleResolver(database)
	f.registry = registry.New(database, roles, log)
	f.engine = claims.New(database, f.registry, notify.New(database, log), roles, log)
	f.svc = New(database, f.provider, f.registry, roles, model.DefaultPlatformFee, log)

	reward := int64(5000)
	item, err := f.registry.Create(ctx, model.ItemDraft{
		Kind: model.ItemKindLost, Title: "Black Wallet", Description: "Leather",
		Category: "accessories", Location: "Kigali", EventDate: "2026-04-10", Reward: &reward,
	}, f.owner)
	require.NoError(t, err)
	f.item = item

	claim, err := f.engine.Submit(ctx, claims.ItemRef{ID: &item.ID}, f.claimant, "It has my ID card", "")
	require.NoError(t, err)
	f.claim = claim
	return f
}

func (f *fixture) approve(t *testing.T) {
	t.Helper()
	_, err := f.engine.Approve(context.Background(), f.claim.ID, f.admin)
	require.NoError(t, err)
}

func (f *fixture) initiation() Initiation {
	return Initiation{ClaimID: f.claim.ID, Method: model.PaymentMethodMTN, Phone: "+250 788 000 002"}
}

func TestInitiateRequiresApprovedClaim(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Initiate(context.Background(), f.initiation(), f.claimant)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestInitiate(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	ctx := context.Background()

	p, err := f.svc.Initiate(ctx, f.initiation(), f.claimant)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, p.Status)
	assert.Equal(t, int64(6000), p.Amount)
	assert.Equal(t, model.Currency, p.Currency)
	assert.Equal(t, "+250788000002", p.PayerPhone)
	assert.Contains(t, p.ProviderRef, "MM-")

	status, err := f.svc.StatusForClaim(ctx, f.claim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, status)

	mine, err := f.svc.ListMine(ctx, f.claimant)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)

	others, err := f.svc.ListMine(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, others)
	assert.NotNil(t, others)
}

func TestInitiateRules(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	ctx := context.Background()

	_, err := f.svc.Initiate(ctx, f.initiation(), nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.Initiate(ctx, f.initiation(), f.other)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	bad := f.initiation()
	bad.Method = "paypal"
	_, err = f.svc.Initiate(ctx, bad, f.claimant)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bad = f.initiation()
	bad.Phone = "call me"
	_, err = f.svc.Initiate(ctx, bad, f.claimant)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	missing := f.initiation()
	missing.ClaimID = 9999
	_, err = f.svc.Initiate(ctx, missing, f.claimant)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProviderFailureIsExternal(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	f.provider.Decline = "+250788000002"

	_, err := f.svc.Initiate(context.Background(), f.initiation(), f.claimant)
	assert.ErrorIs(t, err, apperr.ErrExternal)

	status, err := f.svc.StatusForClaim(context.Background(), f.claim.ID)
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestResolveCompletesAndMarksItemPaid(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	ctx := context.Background()

	p, err := f.svc.Initiate(ctx, f.initiation(), f.claimant)
	require.NoError(t, err)

	_, err = f.svc.Resolve(ctx, p.ID, model.PaymentStatusCompleted, "", f.claimant)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Resolve(ctx, p.ID, "refunded", "", f.admin)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	done, err := f.svc.Resolve(ctx, p.ID, model.PaymentStatusCompleted, "MTN-123", f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, done.Status)
	assert.Equal(t, "MTN-123", done.ProviderRef)
	assert.NotNil(t, done.CompletedAt)

	item, err := f.registry.Get(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemPaymentPaid, item.PaymentStatus)

	_, err = f.svc.Resolve(ctx, p.ID, model.PaymentStatusFailed, "", f.admin)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.svc.Initiate(ctx, f.initiation(), f.claimant)
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "already paid")
}

func TestFailedPaymentCanBeRetried(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	ctx := context.Background()

	p, err := f.svc.Initiate(ctx, f.initiation(), f.claimant)
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, p.ID, model.PaymentStatusFailed, "", f.admin)
	require.NoError(t, err)

	status, err := f.svc.StatusForClaim(ctx, f.claim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, status)

	again, err := f.svc.Initiate(ctx, f.initiation(), f.claimant)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, again.ID)
}

func TestClaimIsPaidOnlyOnce(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	ctx := context.Background()

	first, err := f.svc.Initiate(ctx, f.initiation(), f.claimant)
	require.NoError(t, err)

	_, err = f.svc.Initiate(ctx, f.initiation(), f.claimant)
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "payment still pending")

	mine, err := f.svc.ListMine(ctx, f.claimant)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.Resolve(ctx, first.ID, model.PaymentStatusCompleted, "", f.admin)
	require.NoError(t, err)

	_, err = f.svc.Initiate(ctx, f.initiation(), f.claimant)
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "already paid")
}

func TestSimulatedProvider(t *testing.T) {
	p := &SimulatedProvider{}
	ctx := context.Background()

	ref, err := p.Charge(ctx, ChargeRequest{Method: model.PaymentMethodAirtel, Phone: "+250730000000", Amount: 1000})
	require.NoError(t, err)
	assert.Len(t, ref, len("MM-")+36)

	_, err = p.Charge(ctx, ChargeRequest{Method: "cash", Amount: 1000})
	assert.Error(t, err)

	_, err = p.Charge(ctx, ChargeRequest{Method: model.PaymentMethodMTN})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Charge(cancelled, ChargeRequest{Method: model.PaymentMethodMTN, Amount: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
