package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/imaging"
	"github.com/erazemk/findersfee/internal/photos"
)

// PhotosHandler handles photo uploads and downloads.
type PhotosHandler struct {
	Photos *photos.Store
}

// Upload handles POST /api/photos as a multipart form with a "photo" file.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.DefaultMaxBytes+(1<<20))
	if err := r.ParseMultipartForm(imaging.DefaultMaxBytes); err != nil {
		jsonError(w, apperr.KindValidation, "file too large or invalid multipart form")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, apperr.KindValidation, "photo file required")
		return
	}
	defer file.Close()

	ref, err := h.Photos.Upload(r.Context(), file, auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]string{"photo": ref})
}

// Get handles GET /api/photos/{id}.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Photos.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", p.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(p.Data)
}
