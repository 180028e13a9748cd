package api

import (
	"net/http"

	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/claims"
)

// AdminHandler handles operator endpoints.
type AdminHandler struct {
	Claims *claims.Engine
	Roles  *auth.RoleResolver
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// ListReconcile handles GET /api/admin/reconcile.
func (h *AdminHandler) ListReconcile(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Claims.OpenReconcileTasks(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, tasks)
}

// RunReconcile handles POST /api/admin/reconcile.
func (h *AdminHandler) RunReconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.Claims.Reconcile(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

// SetRole handles PUT /api/admin/users/{id}/role.
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req setRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Roles.Grant(r.Context(), auth.IdentityFrom(r.Context()), id, req.Role); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
