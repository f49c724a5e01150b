package handler

import (
	"log/slog"
	"net/http"

	"github.com/hackerc/linkhub/internal/meta"
)

// MetaHandler fetches link-preview metadata for the add-bookmark form.
type MetaHandler struct {
	fetcher *meta.Fetcher
	logger  *slog.Logger
}

// NewMetaHandler creates a MetaHandler.
func NewMetaHandler(fetcher *meta.Fetcher, logger *slog.Logger) *MetaHandler {
	return &MetaHandler{fetcher: fetcher, logger: logger}
}

// HandleFetchMeta downloads a page and returns its title, description,
// favicon, og:image and domain.
//
// HTTP: GET /api/fetch-meta?url=https://...
// Auth: required — this endpoint makes outbound requests on the caller's
// behalf and must not be an open proxy.
func (h *MetaHandler) HandleFetchMeta(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "url query parameter is required",
		})
		return
	}

	m, err := h.fetcher.Fetch(r.Context(), rawURL)
	if err != nil {
		// Best-effort endpoint: the target being down or malformed is the
		// target's problem, not ours. 422 tells the client to fall back to
		// manual entry.
		h.logger.Info("metadata fetch failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "fetch_failed",
			Message: "could not fetch metadata for the given URL",
		})
		return
	}

	writeJSON(w, http.StatusOK, m)
}
