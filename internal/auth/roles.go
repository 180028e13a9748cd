package auth

import (
	"context"
	"database/sql"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

// RoleResolver decides a user's effective role. It is the only place
// authorization decisions read roles from, and it always reads the store.
type RoleResolver struct {
	DB *sql.DB
}

// NewRoleResolver returns a resolver backed by db.
func NewRoleResolver(db *sql.DB) *RoleResolver {
	return &RoleResolver{DB: db}
}

// ResolveRole returns the effective role for a user. A recognized role claim
// from the identity provider wins; otherwise the profile role applies;
// otherwise the user is an ordinary user.
func (r *RoleResolver) ResolveRole(ctx context.Context, userID int64) (string, error) {
	u, err := store.GetUser(ctx, r.DB, userID)
	if err != nil {
		return "", apperr.External("reading user", err)
	}
	if u == nil || u.DeletedAt != nil {
		return model.RoleUser, nil
	}
	if role, ok := model.ParseRole(u.Role); ok {
		return role, nil
	}

	p, err := store.GetProfile(ctx, r.DB, userID)
	if err != nil {
		return "", apperr.External("reading profile", err)
	}
	if p != nil {
		if role, ok := model.ParseRole(p.Role); ok {
			return role, nil
		}
	}
	return model.RoleUser, nil
}

// IsAdmin reports whether the identity currently resolves to admin.
func (r *RoleResolver) IsAdmin(ctx context.Context, id *model.Identity) (bool, error) {
	if id == nil {
		return false, nil
	}
	role, err := r.ResolveRole(ctx, id.UserID)
	if err != nil {
		return false, err
	}
	return role == model.RoleAdmin, nil
}

// RequireAdmin fails with Unauthorized for anonymous callers and Forbidden
// for signed-in non-admins.
func (r *RoleResolver) RequireAdmin(ctx context.Context, id *model.Identity) error {
	if id == nil {
		return apperr.Unauthorized("sign in required")
	}
	ok, err := r.IsAdmin(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("admin role required")
	}
	return nil
}

// SetRole records role as the user's identity-provider claim and mirrors it
// on the profile. It performs no authorization; callers are trusted.
func (r *RoleResolver) SetRole(ctx context.Context, userID int64, role string) error {
	role, ok := model.ParseRole(role)
	if !ok {
		return apperr.Validation("role must be admin or user")
	}
	u, err := store.GetUser(ctx, r.DB, userID)
	if err != nil {
		return apperr.External("reading user", err)
	}
	if u == nil || u.DeletedAt != nil {
		return apperr.NotFound("user not found")
	}
	if err := store.SetUserRole(ctx, r.DB, userID, role); err != nil {
		return apperr.External("updating role", err)
	}
	if err := store.UpsertProfileRole(ctx, r.DB, userID, role); err != nil {
		return apperr.External("updating profile", err)
	}
	return nil
}

// Grant changes another user's role on behalf of an admin. Admins cannot
// demote themselves.
func (r *RoleResolver) Grant(ctx context.Context, actor *model.Identity, userID int64, role string) error {
	if err := r.RequireAdmin(ctx, actor); err != nil {
		return err
	}
	if actor.UserID == userID {
		if parsed, _ := model.ParseRole(role); parsed != model.RoleAdmin {
			return apperr.InvalidState("admins cannot remove their own admin role")
		}
	}
	return r.SetRole(ctx, userID, role)
}
