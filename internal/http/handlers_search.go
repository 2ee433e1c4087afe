package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dsjohal14/quicksearch/internal/suggest"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// HandleSearch returns one page of every product matching the query.
// This is the listing the suggestion response links to as "view all".
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	text := suggest.NewQuery(r.URL.Query().Get("q"), 0).Text
	if text == "" {
		writeError(w, http.StatusBadRequest, "query is required", "MISSING_QUERY")
		return
	}

	limit, err := intParam(r, "limit", defaultPageSize)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid limit", "INVALID_LIMIT")
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid offset", "INVALID_OFFSET")
		return
	}

	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, err := h.engine.Items(r.Context(), text)
	if err != nil {
		h.logger.Error().Err(err).Str("query", text).Msg("search failed")
		writeError(w, http.StatusBadGateway, "search unavailable", "SEARCH_ERROR")
		return
	}

	page := []suggest.Item{}
	if offset < len(items) {
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		page = items[offset:end]
	}

	h.logger.Info().
		Str("query", text).
		Int("total", len(items)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("search completed")

	writeJSON(w, http.StatusOK, SearchResultsResponse{
		Query:   text,
		Total:   len(items),
		Limit:   limit,
		Offset:  offset,
		Results: page,
	})
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
