package api

import (
	"net/http"

	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/notify"
)

// NotificationsHandler handles the signed-in user's notifications.
type NotificationsHandler struct {
	Notify *notify.Dispatcher
}

// List handles GET /api/notifications. ?unread=true limits to unread ones.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	unread := r.URL.Query().Get("unread") == "true"
	list, err := h.Notify.ListFor(r.Context(), auth.IdentityFrom(r.Context()), unread)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Notify.MarkRead(r.Context(), id, auth.IdentityFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles PUT /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Notify.MarkAllRead(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"marked": n})
}
