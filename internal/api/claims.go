package api

import (
	"context"
	"net/http"

	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/claims"
	"github.com/erazemk/findersfee/internal/model"
)

// ClaimsHandler handles claim endpoints.
type ClaimsHandler struct {
	Claims *claims.Engine
}

type createClaimRequest struct {
	ItemID        *int64 `json:"item_id"`
	ItemName      string `json:"item_name"`
	ItemOwnerName string `json:"item_owner_name"`
	ItemPhoto     string `json:"item_photo"`
	Justification string `json:"justification"`
	Photo         string `json:"photo"`
}

// Create handles POST /api/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ref := claims.ItemRef{ID: req.ItemID, Name: req.ItemName, OwnerName: req.ItemOwnerName, PhotoRef: req.ItemPhoto}
	c, err := h.Claims.Submit(r.Context(), ref, auth.IdentityFrom(r.Context()), req.Justification, req.Photo)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

// Pending handles GET /api/claims/pending.
func (h *ClaimsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	list, err := h.Claims.ListPending(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Mine handles GET /api/claims/my.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.Claims.ListMine(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Get handles GET /api/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Claims.Get(r.Context(), id, auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Approve handles PUT /api/claims/{id}/approve.
func (h *ClaimsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Claims.Approve)
}

// Reject handles PUT /api/claims/{id}/reject.
func (h *ClaimsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Claims.Reject)
}

func (h *ClaimsHandler) review(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id int64, reviewer *model.Identity) (*model.Claim, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := transition(r.Context(), id, auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}
