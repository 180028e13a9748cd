package api

import (
	"net/http"

	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/payments"
)

// PaymentsHandler handles payment endpoints.
type PaymentsHandler struct {
	Payments *payments.Service
}

type resolvePaymentRequest struct {
	Status      string `json:"status"`
	ProviderRef string `json:"provider_ref"`
}

// Create handles POST /api/payments.
func (h *PaymentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req payments.Initiation
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Payments.Initiate(r.Context(), req, auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, p)
}

// Mine handles GET /api/payments/my.
func (h *PaymentsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.Payments.ListMine(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Resolve handles PUT /api/payments/{id}/status, the provider callback.
func (h *PaymentsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req resolvePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Payments.Resolve(r.Context(), id, req.Status, req.ProviderRef, auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, p)
}
