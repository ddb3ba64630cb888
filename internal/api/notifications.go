package api

import (
	"database/sql"
	"net/http"

	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/store"
)

// NotificationsHandler handles notification endpoints.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /notifications, newest first.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	list, err := store.ListNotifications(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if list == nil {
		list = []model.Notification{}
	}

	unread, err := store.CountUnreadNotifications(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"notifications": list,
		"unreadCount":   unread,
	})
}

// MarkRead handles PATCH /notifications/{id}/read. Re-marking an already
// read notification succeeds without effect.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	found, err := store.MarkNotificationRead(r.Context(), h.DB, r.PathValue("id"), claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "notification not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification read"})
}
