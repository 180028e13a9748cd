package api

import (
	"net/http"

	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/stats"
)

// StatsHandler serves activity reports.
type StatsHandler struct {
	Stats *stats.Service
}

// Platform handles GET /api/statistics/platform.
func (h *StatsHandler) Platform(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Platform(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, s)
}

// Mine handles GET /api/statistics/my.
func (h *StatsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Mine(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, s)
}
