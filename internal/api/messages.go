package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/store"
)

// MessagesHandler handles the per-claim conversation endpoints. The
// websocket hub is the primary delivery path; these exist for history and
// as the fallback send path.
type MessagesHandler struct {
	DB  *sql.DB
	Log *logrus.Logger
}

type sendMessageRequest struct {
	ClaimID string `json:"claimId"`
	Content string `json:"content"`
}

// Send handles POST /messages. Only parties to an accepted or done claim
// can message each other.
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	viewer := GetClaims(r.Context())

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClaimID == "" || strings.TrimSpace(req.Content) == "" {
		jsonError(w, http.StatusBadRequest, "claimId and content required")
		return
	}

	claim, receiver, status := h.conversationAccess(w, r, req.ClaimID, viewer.Email)
	if status != 0 {
		return
	}

	msg, err := store.CreateMessage(r.Context(), h.DB, &model.Message{
		ClaimID:       claim.ID,
		SenderEmail:   viewer.Email,
		ReceiverEmail: receiver,
		Content:       req.Content,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	receiverID := claim.ClaimerID
	receiverIsClaimer := receiver == claim.ClaimerEmail
	if !receiverIsClaimer {
		item, err := store.GetItem(r.Context(), h.DB, claim.ItemID)
		if err != nil || item == nil {
			jsonError(w, http.StatusInternalServerError, "internal error")
			return
		}
		receiverID = item.ReporterID
	}
	if _, err := store.CreateNotification(r.Context(), h.DB, &model.Notification{
		UserID:      receiverID,
		Type:        model.NotificationNewMessage,
		ClaimID:     claim.ID,
		ItemID:      claim.ItemID,
		ItemTitle:   claim.ItemTitle,
		SenderName:  viewer.Name,
		SenderEmail: viewer.Email,
		Message:     fmt.Sprintf("New message from %s about %q", viewer.Name, claim.ItemTitle),
	}); err != nil {
		h.Log.WithError(err).Error("creating message notification")
	}

	jsonResponse(w, http.StatusCreated, msg)
}

// ListForClaim handles GET /messages/claim/{claimId}. Opening the thread
// marks it read for the viewer.
func (h *MessagesHandler) ListForClaim(w http.ResponseWriter, r *http.Request) {
	viewer := GetClaims(r.Context())
	claimID := r.PathValue("claimId")

	claim, _, status := h.conversationAccess(w, r, claimID, viewer.Email)
	if status != 0 {
		return
	}

	list, err := store.ListMessagesForClaim(r.Context(), h.DB, claim.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if list == nil {
		list = []model.Message{}
	}

	if err := store.MarkConversationRead(r.Context(), h.DB, claim.ID, viewer.Email); err != nil {
		h.Log.WithError(err).Error("marking conversation read")
	}

	jsonResponse(w, http.StatusOK, list)
}

// Conversations handles GET /messages/conversations: one thread summary
// per accepted or done claim the caller is party to.
func (h *MessagesHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	viewer := GetClaims(r.Context())

	list, err := store.ListConversations(r.Context(), h.DB, viewer.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if list == nil {
		list = []model.Conversation{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// conversationAccess loads the claim and checks that the viewer may use
// its conversation. On failure it writes the error response and returns a
// non-zero status; on success it returns the claim and the counterpart
// email.
func (h *MessagesHandler) conversationAccess(w http.ResponseWriter, r *http.Request, claimID, viewerEmail string) (*model.Claim, string, int) {
	claim, err := store.GetClaim(r.Context(), h.DB, claimID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return nil, "", http.StatusInternalServerError
	}
	if claim == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return nil, "", http.StatusNotFound
	}

	item, err := store.GetItem(r.Context(), h.DB, claim.ItemID)
	if err != nil || item == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return nil, "", http.StatusInternalServerError
	}

	var counterpart string
	switch viewerEmail {
	case claim.ClaimerEmail:
		counterpart = item.ReporterEmail
	case item.ReporterEmail:
		counterpart = claim.ClaimerEmail
	default:
		jsonError(w, http.StatusForbidden, "not a party to this claim")
		return nil, "", http.StatusForbidden
	}

	if claim.Status != model.ClaimStatusAccepted && claim.Status != model.ClaimStatusDone {
		jsonError(w, http.StatusConflict, "conversation opens once the claim is accepted")
		return nil, "", http.StatusConflict
	}

	return claim, counterpart, 0
}
