package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/findersfee/internal/model"
)

func mustUser(t *testing.T, database *sql.DB, email string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, email, "hash", "Name "+email, "0788000000", "")
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func mustItem(t *testing.T, database *sql.DB, reporter *model.User, kind, title string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, &model.Item{
		Kind:          kind,
		Title:         title,
		Description:   "description of " + title,
		Category:      "electronics",
		Location:      "Kigali",
		EventDate:     "2026-01-15",
		ReporterID:    reporter.ID,
		ReporterName:  reporter.FullName,
		ReporterPhone: reporter.Phone,
	})
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", title, err)
	}
	return item
}

func mustClaim(t *testing.T, database *sql.DB, item *model.Item, claimant *model.User) *model.Claim {
	t.Helper()
	c, err := CreateClaim(context.Background(), database, &model.Claim{
		ItemID:        &item.ID,
		ItemName:      item.Title,
		ClaimantID:    claimant.ID,
		ClaimantName:  claimant.FullName,
		ClaimantPhone: claimant.Phone,
		Justification: "it is mine",
	})
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	return c
}
