package api

import (
	"net/http"
	"strings"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/gate"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/registry"
)

const maxPageSize = 200

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Items *registry.Registry
	Gate  *gate.Resolver
}

// itemFilter builds a listing filter from query parameters.
func itemFilter(r *http.Request) (model.ItemFilter, error) {
	q := r.URL.Query()
	f := model.ItemFilter{
		Kind:     q.Get("kind"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Search:   strings.TrimSpace(q.Get("search")),
	}

	var err error
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		return f, err
	}
	if f.Limit == 0 {
		f.Limit = registry.DefaultPageSize
	}
	f.Limit = min(f.Limit, maxPageSize)

	if f.Kind != "" && f.Kind != model.ItemKindLost && f.Kind != model.ItemKindFound {
		return f, apperr.Validation("kind must be lost or found")
	}
	if q.Get("mine") == "true" {
		id := auth.IdentityFrom(r.Context())
		if id == nil {
			return f, apperr.Unauthorized("sign in to list your items")
		}
		f.OwnerID = id.UserID
	}
	return f, nil
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := itemFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.Items.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft model.ItemDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.Items.Create(r.Context(), draft, auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.Items.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var draft model.ItemDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.Items.Update(r.Context(), id, draft, auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Items.Delete(r.Context(), id, auth.IdentityFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Contact handles GET /api/items/{id}/contact. The answer depends on who
// asks and is computed on every request.
func (h *ItemsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.Gate.ForViewer(r.Context(), id, auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	jsonResponse(w, http.StatusOK, d)
}
