package httpapi

import (
	"net/http"
)

// HandleSuggest answers an autocomplete lookup.
// A request without the q parameter is redirected to the storefront base URL.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var q *string
	if values := r.URL.Query(); values.Has("q") {
		text := values.Get("q")
		q = &text
	}

	outcome, err := h.service.Handle(r.Context(), q)
	if err != nil {
		h.logger.Error().Err(err).Msg("suggestion lookup failed")
		writeError(w, http.StatusBadGateway, "search unavailable", "SEARCH_ERROR")
		return
	}

	if outcome.IsRedirect() {
		http.Redirect(w, r, outcome.Redirect, http.StatusFound)
		return
	}

	writeJSON(w, http.StatusOK, outcome.Response)
}
