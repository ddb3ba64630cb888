package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/founditapp/foundit/internal/imaging"
	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/rank"
	"github.com/founditapp/foundit/internal/store"
)

// ItemsHandler handles lost/found item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Contact     string `json:"contact"`
	ImageURL    string `json:"imageUrl"`
}

type reportFakeRequest struct {
	Reason string `json:"reason"`
}

// List handles GET /items. Public.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if s := q.Get("status"); s != "" && !model.ValidItemStatus(s) {
		jsonError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	items, err := store.ListItems(r.Context(), h.DB, q.Get("type"), q.Get("status"), q.Get("search"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /items/{type}.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	itemType := r.PathValue("type")
	if !model.ValidItemType(itemType) {
		jsonError(w, http.StatusBadRequest, "item type must be lost or found")
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}

	item := &model.Item{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		Date:          req.Date,
		Contact:       req.Contact,
		ImageURL:      req.ImageURL,
		Type:          itemType,
		Status:        model.ItemStatusPending,
		ReporterID:    claims.UserID,
		ReporterName:  claims.Name,
		ReporterEmail: claims.Email,
	}

	created, err := store.CreateItem(r.Context(), h.DB, item)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /items/{id}. Public.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /items/{id}. Owner or admin only.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.ReporterID != claims.UserID && !claims.IsAdmin {
		jsonError(w, http.StatusForbidden, "only the reporter can delete this item")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.ReporterID != claims.UserID && !claims.IsAdmin {
		jsonError(w, http.StatusForbidden, "only the reporter can change this image")
		return
	}

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

	if err := store.SetItemImage(r.Context(), h.DB, item.ID, result.Data, result.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /items/{id}/image. Public.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetItemImage(r.Context(), h.DB, r.PathValue("id"))
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

// Browse handles GET /browse/{type}: the ordered page for the
// caller, with per-item call-to-action state. Works for anonymous
// visitors too; the match-priority group and claim labels need a login.
func (h *ItemsHandler) Browse(w http.ResponseWriter, r *http.Request) {
	pageType := r.PathValue("type")
	if !model.ValidItemType(pageType) {
		jsonError(w, http.StatusBadRequest, "page type must be lost or found")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, pageType, "", "")
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	var viewerEmail string
	var viewerReports []model.Item
	var viewerClaims []model.Claim
	if claims := GetClaims(r.Context()); claims != nil {
		viewerEmail = claims.Email

		oppositeType := model.ItemTypeLost
		if pageType == model.ItemTypeLost {
			oppositeType = model.ItemTypeFound
		}
		reports, err := store.ListItems(r.Context(), h.DB, oppositeType, "", "")
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to list items")
			return
		}
		viewerReports = reports

		viewerClaims, err = store.ListClaimsForUser(r.Context(), h.DB, viewerEmail)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to list claims")
			return
		}
	}

	page := rank.BrowsePage(items, viewerEmail, viewerReports, viewerClaims, pageType)
	jsonResponse(w, http.StatusOK, page)
}

// ReportFake handles POST /items/{id}/report-fake. Only completed items
// can be flagged.
func (h *ItemsHandler) ReportFake(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.Status != model.ItemStatusCompleted {
		jsonError(w, http.StatusBadRequest, "only completed items can be reported")
		return
	}

	var req reportFakeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := store.CreateFakeReport(r.Context(), h.DB, &model.FakeReport{
		ItemID:        item.ID,
		ItemTitle:     item.Title,
		ReporterName:  claims.Name,
		ReporterEmail: claims.Email,
		Reason:        req.Reason,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create report")
		return
	}
	jsonResponse(w, http.StatusCreated, report)
}
