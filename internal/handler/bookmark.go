package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hackerc/linkhub/internal/auth"
	"github.com/hackerc/linkhub/internal/service"
)

// BookmarkHandler exposes saved-link CRUD:
//
//	GET    /api/bookmarks                → list, optional ?category={id} filter
//	POST   /api/bookmarks                → create
//	PUT    /api/bookmarks/{id}           → update
//	DELETE /api/bookmarks/{id}           → delete
type BookmarkHandler struct {
	service *service.BookmarkService
	logger  *slog.Logger
}

// NewBookmarkHandler creates a BookmarkHandler.
func NewBookmarkHandler(svc *service.BookmarkService, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{service: svc, logger: logger}
}

// bookmarkRequest is the JSON body for create and update. The same shape
// serves both: update replaces all client-editable fields.
type bookmarkRequest struct {
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	Description  string  `json:"description"`
	CategoryID   *string `json:"categoryId"`
	FaviconURL   string  `json:"faviconUrl"`
	OGImageURL   string  `json:"ogImageUrl"`
	DomainName   string  `json:"domainName"`
	ReadProgress int     `json:"readProgress"`
}

func (req bookmarkRequest) params() service.BookmarkParams {
	return service.BookmarkParams{
		Title:        req.Title,
		URL:          req.URL,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		FaviconURL:   req.FaviconURL,
		OGImageURL:   req.OGImageURL,
		DomainName:   req.DomainName,
		ReadProgress: req.ReadProgress,
	}
}

// HandleList returns the caller's bookmarks. ?category={id} narrows the
// list to one category; without it every bookmark comes back ("All Links").
//
// HTTP: GET /api/bookmarks
func (h *BookmarkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var categoryID *string
	if c := r.URL.Query().Get("category"); c != "" {
		categoryID = &c
	}

	bookmarks, err := h.service.List(r.Context(), userID, categoryID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarks)
}

// HandleCreate saves a new bookmark.
//
// HTTP: POST /api/bookmarks
func (h *BookmarkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("create bookmark: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	bookmark, err := h.service.Create(r.Context(), userID, req.params())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookmark)
}

// HandleUpdate replaces a bookmark's editable fields.
//
// HTTP: PUT /api/bookmarks/{id}
func (h *BookmarkHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	bookmark, err := h.service.Update(r.Context(), userID, id, req.params())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmark)
}

// HandleDelete removes a bookmark.
//
// HTTP: DELETE /api/bookmarks/{id}
func (h *BookmarkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
