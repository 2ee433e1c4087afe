package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dsjohal14/quicksearch/internal/scope/catalog"
	"github.com/go-playground/validator/v10"
)

// HandleIngest adds or replaces a catalog product
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid product request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid product",
			Code:    "VALIDATION_ERROR",
			Details: validationDetails(err),
		})
		return
	}

	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	product := catalog.Product{
		ID:            req.ID,
		SKU:           req.SKU,
		Name:          req.Name,
		Price:         req.Price,
		Currency:      req.Currency,
		Image:         req.Image,
		URLKey:        req.URLKey,
		RatingSummary: req.RatingSummary,
		ReviewCount:   req.ReviewCount,
		CreatedAt:     req.CreatedAt,
	}

	if err := h.catalog.Add(product); err != nil {
		h.logger.Error().Err(err).Str("product_id", req.ID).Msg("failed to store product")
		writeError(w, http.StatusInternalServerError, "failed to store product", "STORE_ERROR")
		return
	}

	h.logger.Info().
		Str("product_id", req.ID).
		Str("name", req.Name).
		Msg("product ingested")

	writeJSON(w, http.StatusOK, ProductResponse{
		ID:      req.ID,
		Success: true,
		Message: "product ingested successfully",
	})
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return strings.Join(fields, ", ")
}
