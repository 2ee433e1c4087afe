package httpapi

import (
	"net/http"

	"github.com/dsjohal14/quicksearch/internal/scope/analytics"
)

// HandlePopular lists the most searched query terms
func (h *Handler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "invalid limit", "INVALID_LIMIT")
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	terms, err := h.recorder.Popular(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load popular terms")
		writeError(w, http.StatusInternalServerError, "failed to load popular terms", "ANALYTICS_ERROR")
		return
	}
	if terms == nil {
		terms = []analytics.Term{}
	}

	writeJSON(w, http.StatusOK, PopularResponse{Terms: terms, Count: len(terms)})
}
