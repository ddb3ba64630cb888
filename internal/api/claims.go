package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/store"
)

// ClaimsHandler handles the claim lifecycle endpoints.
type ClaimsHandler struct {
	DB  *sql.DB
	Log *logrus.Logger
}

type createClaimRequest struct {
	ItemID      string `json:"itemId"`
	Description string `json:"description"`
	ProofImage  string `json:"proofImage"`
	Phone       string `json:"phone"`
}

// Create handles POST /claims. Claims start pending; the item's reporter
// is notified. Claiming your own item is rejected, as is a claim without
// a proof image.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == "" {
		jsonError(w, http.StatusBadRequest, "itemId required")
		return
	}
	if strings.TrimSpace(req.ProofImage) == "" {
		jsonError(w, http.StatusUnprocessableEntity, "proof image required")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, req.ItemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.ReporterEmail == claims.Email {
		jsonError(w, http.StatusUnprocessableEntity, "you cannot claim your own item")
		return
	}
	if item.Status == model.ItemStatusCompleted {
		jsonError(w, http.StatusConflict, "item is already resolved")
		return
	}

	claim, err := store.CreateClaim(r.Context(), h.DB, &model.Claim{
		ItemID:        item.ID,
		ItemTitle:     item.Title,
		ClaimerID:     claims.UserID,
		ClaimerName:   claims.Name,
		ClaimerEmail:  claims.Email,
		ClaimerPhone:  req.Phone,
		ProofImageURL: req.ProofImage,
		Description:   req.Description,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create claim")
		return
	}

	h.notify(r.Context(), &model.Notification{
		UserID:      item.ReporterID,
		Type:        model.NotificationClaimReceived,
		ClaimID:     claim.ID,
		ItemID:      item.ID,
		ItemTitle:   item.Title,
		SenderName:  claims.Name,
		SenderEmail: claims.Email,
		Message:     fmt.Sprintf("%s claims to own %q", claims.Name, item.Title),
	})

	jsonResponse(w, http.StatusCreated, claim)
}

// List handles GET /claims. With itemId, lists the claims against one
// item (its reporter or an admin only); otherwise, every claim the caller
// is party to, either as claimer or as item reporter.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if itemID := r.URL.Query().Get("itemId"); itemID != "" {
		item, err := store.GetItem(r.Context(), h.DB, itemID)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to get item")
			return
		}
		if item == nil {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		if item.ReporterEmail != claims.Email && !claims.IsAdmin {
			jsonError(w, http.StatusForbidden, "only the reporter can review claims")
			return
		}

		list, err := store.ListClaimsForItem(r.Context(), h.DB, itemID)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to list claims")
			return
		}
		if list == nil {
			list = []model.Claim{}
		}
		jsonResponse(w, http.StatusOK, list)
		return
	}

	list, err := store.ListClaimsForUser(r.Context(), h.DB, claims.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if list == nil {
		list = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Accept handles PATCH /claims/{id}/accept. Reporter only. Accepting
// marks the item accepted in the same transaction and opens the
// conversation for the claim.
func (h *ClaimsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.ClaimStatusAccepted)
}

// Reject handles PATCH /claims/{id}/reject. Reporter only.
func (h *ClaimsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.ClaimStatusRejected)
}

// Done handles PATCH /claims/{id}/done. Either party may confirm the
// handover; the item is completed along with it.
func (h *ClaimsHandler) Done(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.ClaimStatusDone)
}

func (h *ClaimsHandler) transition(w http.ResponseWriter, r *http.Request, to string) {
	viewer := GetClaims(r.Context())

	claim, err := store.GetClaim(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return
	}
	if claim == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, claim.ItemID)
	if err != nil || item == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	// Rejected and done claims never move again; refusing here keeps the
	// authorization errors below scoped to claims that are still live.
	if model.ClaimTerminal(claim.Status) {
		jsonError(w, http.StatusConflict, fmt.Sprintf("claim cannot move from %s to %s", claim.Status, to))
		return
	}

	isReporter := item.ReporterEmail == viewer.Email
	isClaimer := claim.ClaimerEmail == viewer.Email
	switch to {
	case model.ClaimStatusAccepted, model.ClaimStatusRejected:
		if !isReporter {
			jsonError(w, http.StatusForbidden, "only the reporter can review this claim")
			return
		}
	case model.ClaimStatusDone:
		if !isReporter && !isClaimer {
			jsonError(w, http.StatusForbidden, "only a claim party can complete it")
			return
		}
	}

	switch to {
	case model.ClaimStatusAccepted:
		err = store.AcceptClaim(r.Context(), h.DB, claim.ID)
	case model.ClaimStatusRejected:
		err = store.RejectClaim(r.Context(), h.DB, claim.ID)
	case model.ClaimStatusDone:
		err = store.MarkClaimDone(r.Context(), h.DB, claim.ID)
	}
	if err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			jsonError(w, http.StatusConflict, fmt.Sprintf("claim cannot move from %s to %s", claim.Status, to))
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to update claim")
		return
	}

	h.notifyTransition(r.Context(), claim, item, viewer.Email, to)

	updated, err := store.GetClaim(r.Context(), h.DB, claim.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// notifyTransition tells the counterpart what happened. Accept and reject
// go to the claimer; done goes to whichever party did not confirm.
func (h *ClaimsHandler) notifyTransition(ctx context.Context, claim *model.Claim, item *model.Item, actorEmail, to string) {
	n := &model.Notification{
		ClaimID:   claim.ID,
		ItemID:    item.ID,
		ItemTitle: item.Title,
	}

	switch to {
	case model.ClaimStatusAccepted:
		n.UserID = claim.ClaimerID
		n.Type = model.NotificationClaimAccepted
		n.SenderName = item.ReporterName
		n.SenderEmail = item.ReporterEmail
		n.Message = fmt.Sprintf("Your claim on %q was accepted", item.Title)
	case model.ClaimStatusRejected:
		n.UserID = claim.ClaimerID
		n.Type = model.NotificationClaimDeclined
		n.SenderName = item.ReporterName
		n.SenderEmail = item.ReporterEmail
		n.Message = fmt.Sprintf("Your claim on %q was declined", item.Title)
	case model.ClaimStatusDone:
		n.Type = model.NotificationClaimDone
		n.Message = fmt.Sprintf("The claim on %q was completed", item.Title)
		if actorEmail == claim.ClaimerEmail {
			n.UserID = item.ReporterID
			n.SenderName = claim.ClaimerName
			n.SenderEmail = claim.ClaimerEmail
		} else {
			n.UserID = claim.ClaimerID
			n.SenderName = item.ReporterName
			n.SenderEmail = item.ReporterEmail
		}
	}

	h.notify(ctx, n)
}

func (h *ClaimsHandler) notify(ctx context.Context, n *model.Notification) {
	if _, err := store.CreateNotification(ctx, h.DB, n); err != nil {
		h.Log.WithError(err).Error("creating notification")
	}
}
