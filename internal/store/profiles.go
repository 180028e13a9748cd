package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/findersfee/internal/model"
)

// GetProfile returns the profile row for a user, or nil if none exists.
func GetProfile(ctx context.Context, db *sql.DB, userID int64) (*model.Profile, error) {
	p := &model.Profile{}
	err := db.QueryRowContext(ctx,
		`SELECT user_id, role, updated_at FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Role, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return p, nil
}

// UpsertProfileRole sets the role stored on a user's profile.
func UpsertProfileRole(ctx context.Context, db *sql.DB, userID int64, role string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, role) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET role = excluded.role, updated_at = CURRENT_TIMESTAMP`,
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("upserting profile role: %w", err)
	}
	return nil
}
