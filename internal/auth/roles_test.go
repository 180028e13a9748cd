package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/db"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

func TestResolveRolePrecedence(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	r := NewRoleResolver(database)

	tests := []struct {
		name    string
		claim   string
		profile string // empty means no profile row
		want    string
	}{
		{"no claim no profile", "", "", model.RoleUser},
		{"claim admin", "admin", "", model.RoleAdmin},
		{"claim admin any case", "ADMIN", "", model.RoleAdmin},
		{"claim user beats profile admin", "user", "admin", model.RoleUser},
		{"claim admin beats profile user", "Admin", "user", model.RoleAdmin},
		{"empty claim falls back to profile", "", "Admin", model.RoleAdmin},
		{"legacy claim falls back to profile", "authenticated", "admin", model.RoleAdmin},
		{"unknown profile role denies", "", "superuser", model.RoleUser},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := store.CreateUser(ctx, database, "u"+string(rune('a'+i))+"@example.com", "h", "U", "", tt.claim)
			require.NoError(t, err)
			if tt.profile != "" {
				require.NoError(t, store.UpsertProfileRole(ctx, database, u.ID, tt.profile))
			}

			got, err := r.ResolveRole(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRoleMissingUser(t *testing.T) {
	r := NewRoleResolver(db.NewTestDB(t))

	got, err := r.ResolveRole(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, got)
}

func TestRequireAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	r := NewRoleResolver(database)

	admin, _ := store.CreateUser(ctx, database, "admin@example.com", "h", "Admin", "", "")
	store.UpsertProfileRole(ctx, database, admin.ID, "admin")
	user, _ := store.CreateUser(ctx, database, "user@example.com", "h", "User", "", "")

	assert.ErrorIs(t, r.RequireAdmin(ctx, nil), apperr.ErrUnauthorized)
	assert.NoError(t, r.RequireAdmin(ctx, &model.Identity{UserID: admin.ID}))

	// The role carried on the identity is never trusted.
	err := r.RequireAdmin(ctx, &model.Identity{UserID: user.ID, Role: model.RoleAdmin})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Revoking the role takes effect immediately.
	store.SetUserRole(ctx, database, admin.ID, model.RoleUser)
	assert.ErrorIs(t, r.RequireAdmin(ctx, &model.Identity{UserID: admin.ID}), apperr.ErrForbidden)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, IdentityFrom(ctx))

	id := &model.Identity{UserID: 4, Name: "Ana"}
	assert.Same(t, id, IdentityFrom(WithIdentity(ctx, id)))
}

func TestGrant(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	r := NewRoleResolver(database)

	admin, _ := store.CreateUser(ctx, database, "admin@example.com", "h", "Admin", "", model.RoleAdmin)
	user, _ := store.CreateUser(ctx, database, "user@example.com", "h", "User", "", model.RoleUser)
	adminID := &model.Identity{UserID: admin.ID}
	userID := &model.Identity{UserID: user.ID}

	assert.ErrorIs(t, r.Grant(ctx, userID, user.ID, model.RoleAdmin), apperr.ErrForbidden)
	assert.ErrorIs(t, r.Grant(ctx, adminID, user.ID, "root"), apperr.ErrValidation)
	assert.ErrorIs(t, r.Grant(ctx, adminID, 999, model.RoleAdmin), apperr.ErrNotFound)
	assert.ErrorIs(t, r.Grant(ctx, adminID, admin.ID, model.RoleUser), apperr.ErrInvalidState)

	// A recognized user claim would otherwise shadow the profile role.
	require.NoError(t, r.Grant(ctx, adminID, user.ID, "Admin"))
	role, err := r.ResolveRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)

	require.NoError(t, r.Grant(ctx, adminID, user.ID, model.RoleUser))
	role, err = r.ResolveRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, role)
}
