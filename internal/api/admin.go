package api

import (
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/store"
)

// AdminHandler handles the moderation endpoints. All routes sit behind
// RequireAdmin.
type AdminHandler struct {
	DB  *sql.DB
	Log *logrus.Logger
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /admin/users/{id}. Soft delete; the email
// becomes reusable.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.Log.WithField("email", user.Email).Info("user deleted")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// BlockUser handles PATCH /admin/users/{id}/block.
func (h *AdminHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

// UnblockUser handles PATCH /admin/users/{id}/unblock.
func (h *AdminHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *AdminHandler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	id := r.PathValue("id")

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := store.SetUserBlocked(r.Context(), h.DB, id, blocked); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	h.Log.WithFields(logrus.Fields{"email": user.Email, "blocked": blocked}).Info("user block state changed")
	updated, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /admin/items/{id}.
func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.Log.WithField("item", id).Info("item removed by moderator")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// ListReports handles GET /admin/reports.
func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := store.ListFakeReports(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []model.FakeReport{}
	}
	jsonResponse(w, http.StatusOK, reports)
}
