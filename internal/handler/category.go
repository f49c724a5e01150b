package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hackerc/linkhub/internal/auth"
	"github.com/hackerc/linkhub/internal/service"
)

// CategoryHandler exposes the category tree over HTTP:
//
//	GET    /api/categories             → the caller's nested tree
//	POST   /api/categories             → create (short id allocated server-side)
//	PUT    /api/categories/{id}        → rename / reparent / toggle visibility
//	DELETE /api/categories/{id}        → delete with subtree cascade
//	POST   /api/categories/{id}/toggle → flip expand/collapse, return the tree
//
// Responses carry the nested TreeCategory shape the sidebar renders
// directly; the flat row representation never crosses the API boundary.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{service: svc, logger: logger}
}

// HandleTree returns the caller's full category tree.
//
// HTTP: GET /api/categories
func (h *CategoryHandler) HandleTree(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	nodes, err := h.service.Tree(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nodes)
}

// createCategoryRequest is the JSON body for POST /api/categories.
type createCategoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
	IsPublic bool    `json:"isPublic"`
}

// HandleCreate creates a category and returns the new node, short id
// included.
//
// HTTP: POST /api/categories
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("create category: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	node, err := h.service.Create(r.Context(), userID, req.Name, req.ParentID, req.IsPublic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

// updateCategoryRequest is the JSON body for PUT /api/categories/{id}.
// Omitted fields stay unchanged; "parentId": null in combination with
// clearParent moves the category to the root level.
type updateCategoryRequest struct {
	Name        *string `json:"name"`
	IsPublic    *bool   `json:"isPublic"`
	ParentID    *string `json:"parentId"`
	ClearParent bool    `json:"clearParent"`
}

// HandleUpdate modifies a category.
//
// HTTP: PUT /api/categories/{id}
func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	category, err := h.service.Update(r.Context(), userID, id, service.UpdateCategoryParams{
		Name:        req.Name,
		IsPublic:    req.IsPublic,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

// HandleDelete removes a category and its whole subtree.
//
// HTTP: DELETE /api/categories/{id}
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleToggle flips a category's expand/collapse state and returns the
// updated tree. The flag is session-scoped UI state, never persisted.
//
// HTTP: POST /api/categories/{id}/toggle
func (h *CategoryHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	nodes, err := h.service.ToggleActive(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nodes)
}
