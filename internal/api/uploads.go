package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/founditapp/foundit/internal/imaging"
	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/store"
)

// UploadsHandler stores processed images and serves them back by key.
// Item photos and claim proof both go through here.
type UploadsHandler struct {
	DB *sql.DB
}

// Upload handles POST /upload-image.
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, http.StatusUnprocessableEntity, model.ErrInvalidAttachment.Error())
			return
		}
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		if errors.Is(err, model.ErrInvalidAttachment) {
			jsonError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	id, err := store.SaveUpload(r.Context(), h.DB, result.Data, result.MIME)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"url": "/uploads/" + id})
}

// Get handles GET /uploads/{id}. Public.
func (h *UploadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetUpload(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
