// Package stats computes platform and per-user activity reports.
package stats

import (
	"context"
	"database/sql"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

// Authorizer checks the admin role against the authoritative store.
type Authorizer interface {
	RequireAdmin(ctx context.Context, id *model.Identity) error
}

// Service builds reports from store counts.
type Service struct {
	DB    *sql.DB
	Roles Authorizer
	Fee   int64
}

// New returns a statistics service. fee is deducted from reporter earnings.
func New(db *sql.DB, roles Authorizer, fee int64) *Service {
	return &Service{DB: db, Roles: roles, Fee: fee}
}

// RecoveryRate is approved claims as a percentage of reported items,
// rounded to one decimal place.
func RecoveryRate(approvedClaims, items int64) float64 {
	if items == 0 {
		return 0
	}
	return math.Round(float64(approvedClaims)/float64(items)*1000) / 10
}

// Platform reports marketplace-wide totals. Admin only.
func (s *Service) Platform(ctx context.Context, viewer *model.Identity) (*model.PlatformStats, error) {
	if err := s.Roles.RequireAdmin(ctx, viewer); err != nil {
		return nil, err
	}

	var (
		items    store.ItemCounts
		claims   store.ClaimCounts
		payments int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = store.CountItems(gctx, s.DB, 0)
		return err
	})
	g.Go(func() (err error) {
		claims, err = store.CountClaims(gctx, s.DB, 0)
		return err
	})
	g.Go(func() (err error) {
		payments, err = store.CountCompletedPayments(gctx, s.DB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.External("computing platform statistics", err)
	}

	return &model.PlatformStats{
		TotalItems:        int(items.Total),
		LostItems:         int(items.Lost),
		FoundItems:        int(items.Found),
		ActiveItems:       int(items.Active),
		ResolvedItems:     int(items.Resolved),
		TotalClaims:       int(claims.Total),
		PendingClaims:     int(claims.Pending),
		ApprovedClaims:    int(claims.Approved),
		RejectedClaims:    int(claims.Rejected),
		CompletedPayments: int(payments),
		RecoveryRate:      RecoveryRate(claims.Approved, items.Total),
	}, nil
}

// Mine reports the viewer's own items, claims and earnings.
func (s *Service) Mine(ctx context.Context, viewer *model.Identity) (*model.UserStats, error) {
	if viewer == nil {
		return nil, apperr.Unauthorized("sign in required")
	}

	var (
		items    store.ItemCounts
		claims   store.ClaimCounts
		earnings int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = store.CountItems(gctx, s.DB, viewer.UserID)
		return err
	})
	g.Go(func() (err error) {
		claims, err = store.CountClaims(gctx, s.DB, viewer.UserID)
		return err
	})
	g.Go(func() (err error) {
		earnings, err = store.SumReporterEarnings(gctx, s.DB, viewer.UserID, s.Fee)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.External("computing statistics", err)
	}

	return &model.UserStats{
		ReportedItems:  int(items.Total),
		ReturnedItems:  int(items.Resolved),
		PendingClaims:  int(claims.Pending),
		ApprovedClaims: int(claims.Approved),
		RejectedClaims: int(claims.Rejected),
		TotalEarnings:  earnings,
	}, nil
}
