package handler

import (
	"log/slog"
	"net/http"

	"github.com/hackerc/linkhub/internal/service"
)

// ShareHandler serves public share links — the only unauthenticated read
// surface:
//
//	GET /share/{username}                 → all public categories of a user
//	GET /share/{username}/{ref}           → one public category
//	GET /share/{username}/{ref}/bookmarks → its bookmarks
//
// {ref} is either a category id or a numeric short id; the service decides
// which. Anything private, absent or owned by someone else is a plain 404 —
// the responses never distinguish the three.
type ShareHandler struct {
	service *service.ShareService
	logger  *slog.Logger
}

// NewShareHandler creates a ShareHandler.
func NewShareHandler(svc *service.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{service: svc, logger: logger}
}

// HandleListPublic returns every public category of a user.
//
// HTTP: GET /share/{username}
func (h *ShareHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	categories, err := h.service.ListPublic(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// HandleResolve returns one shared category.
//
// HTTP: GET /share/{username}/{ref}
func (h *ShareHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	ref := r.PathValue("ref")

	category, err := h.service.Resolve(r.Context(), username, ref)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

// HandleBookmarks returns the bookmarks of a shared category.
//
// HTTP: GET /share/{username}/{ref}/bookmarks
func (h *ShareHandler) HandleBookmarks(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	ref := r.PathValue("ref")

	bookmarks, err := h.service.Bookmarks(r.Context(), username, ref)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarks)
}
