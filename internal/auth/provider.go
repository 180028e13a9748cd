package auth

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

// Provider is the identity provider: it owns accounts, passwords and sessions.
type Provider struct {
	DB     *sql.DB
	Secret string
	TTL    time.Duration
	Roles  *RoleResolver
	Logger *slog.Logger
}

// NewProvider returns a provider that signs sessions with secret.
func NewProvider(db *sql.DB, secret string, ttl time.Duration, logger *slog.Logger) *Provider {
	return &Provider{
		DB:     db,
		Secret: secret,
		TTL:    ttl,
		Roles:  NewRoleResolver(db),
		Logger: logger,
	}
}

// Registration is a sign-up request.
type Registration struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"required,phone"`
}

// Credentials is a sign-in request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is a signed-in session.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Identity  *model.Identity `json:"user"`
}

// ProfileUpdate changes a user's own display data.
type ProfileUpdate struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"required,phone"`
	Language string `json:"language" validate:"omitempty,oneof=en rw fr"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SignUp creates an account. New accounts carry no role claim.
func (p *Provider) SignUp(ctx context.Context, reg Registration) (*model.User, error) {
	reg.Email = normalizeEmail(reg.Email)
	reg.FullName = strings.TrimSpace(reg.FullName)
	if err := model.Validator().Struct(reg); err != nil {
		return nil, apperr.Validation(model.DescribeValidation(err))
	}

	existing, err := store.GetUserByEmail(ctx, p.DB, reg.Email)
	if err != nil {
		return nil, apperr.External("checking email", err)
	}
	if existing != nil {
		return nil, apperr.Validation("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.External("hashing password", err)
	}

	u, err := store.CreateUser(ctx, p.DB, reg.Email, string(hash), reg.FullName, model.NormalizePhone(reg.Phone), "")
	if err != nil {
		return nil, apperr.External("creating account", err)
	}

	p.Logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// SignIn checks credentials and issues a session.
func (p *Provider) SignIn(ctx context.Context, cred Credentials) (*Session, error) {
	email := normalizeEmail(cred.Email)
	if email == "" || cred.Password == "" {
		return nil, apperr.Validation("email and password required")
	}

	u, err := store.GetUserByEmail(ctx, p.DB, email)
	if err != nil {
		return nil, apperr.External("looking up account", err)
	}
	if u == nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(cred.Password)); err != nil {
		p.Logger.Warn("login failed", "user_id", u.ID)
		return nil, apperr.Unauthorized("invalid credentials")
	}

	role, err := p.Roles.ResolveRole(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	token, claims, err := GenerateToken(p.Secret, u.ID, u.Email, role, p.TTL)
	if err != nil {
		return nil, apperr.External("issuing session", err)
	}

	id := model.IdentityOf(u)
	id.Role = role

	p.Logger.Info("user logged in", "user_id", u.ID, "role", role)
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, Identity: id}, nil
}

// CurrentUser resolves a session token to the signed-in identity.
func (p *Provider) CurrentUser(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := ValidateToken(p.Secret, token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}

	revoked, err := store.IsTokenRevoked(ctx, p.DB, claims.ID)
	if err != nil {
		return nil, apperr.External("checking session", err)
	}
	if revoked {
		return nil, apperr.Unauthorized("session has been signed out")
	}

	u, err := store.GetUser(ctx, p.DB, claims.UserID)
	if err != nil {
		return nil, apperr.External("loading account", err)
	}
	if u == nil || u.DeletedAt != nil {
		return nil, apperr.Unauthorized("account no longer exists")
	}

	id := model.IdentityOf(u)
	id.Role = claims.Role
	return id, nil
}

// SignOut revokes the session's token until it would have expired.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := ValidateToken(p.Secret, token)
	if err != nil {
		return apperr.Unauthorized("invalid token")
	}

	if err := store.RevokeToken(ctx, p.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.External("revoking session", err)
	}

	p.Logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

// ChangePassword replaces a user's password after checking the current one.
func (p *Provider) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("current and new password required")
	}
	if err := model.ValidatePassword(next); err != nil {
		return apperr.Validation(err.Error())
	}

	u, err := store.GetUser(ctx, p.DB, userID)
	if err != nil {
		return apperr.External("loading account", err)
	}
	if u == nil || u.DeletedAt != nil {
		return apperr.Unauthorized("account no longer exists")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return apperr.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.External("hashing password", err)
	}
	if err := store.UpdateUserPassword(ctx, p.DB, userID, string(hash)); err != nil {
		return apperr.External("updating password", err)
	}

	p.Logger.Info("user changed own password", "user_id", userID)
	return nil
}

// UpdateProfile changes a user's display name, phone and language.
func (p *Provider) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*model.User, error) {
	upd.FullName = strings.TrimSpace(upd.FullName)
	if err := model.Validator().Struct(upd); err != nil {
		return nil, apperr.Validation(model.DescribeValidation(err))
	}
	if upd.Language == "" {
		upd.Language = "en"
	}

	if err := store.UpdateUserProfile(ctx, p.DB, userID, upd.FullName, model.NormalizePhone(upd.Phone), upd.Language); err != nil {
		return nil, apperr.External("updating profile", err)
	}

	u, err := store.GetUser(ctx, p.DB, userID)
	if err != nil {
		return nil, apperr.External("loading account", err)
	}
	if u == nil {
		return nil, apperr.NotFound("account not found")
	}
	return u, nil
}
