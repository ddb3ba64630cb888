package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/founditapp/foundit/internal/store"
)

// UsersHandler handles profile and statistics endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type updateProfileRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// UpdateMe handles PUT /users/me.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateUserProfile(r.Context(), h.DB, claims.UserID, req.Name, req.Avatar); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// MyStats handles GET /users/me/stats.
func (h *UsersHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	stats, err := store.GetUserStats(r.Context(), h.DB, claims.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// GlobalStats handles GET /stats/global. Public.
func (h *UsersHandler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetGlobalStats(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
