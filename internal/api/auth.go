package api

import (
	"net/http"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/model"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Auth  *auth.Provider
	Roles *auth.RoleResolver
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.Auth.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, u)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		jsonError(w, apperr.KindValidation, "email and password required")
		return
	}
	session, err := h.Auth.SignIn(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, session)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	if err := h.Auth.SignOut(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me. The role is resolved fresh, not read from the token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())
	role, err := h.Roles.ResolveRole(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	me := *id
	me.Role = role
	jsonResponse(w, http.StatusOK, me)
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Auth.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	var req auth.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.Auth.UpdateProfile(r.Context(), id.UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, model.IdentityOf(u))
}
