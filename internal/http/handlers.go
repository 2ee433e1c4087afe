package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dsjohal14/quicksearch/internal/scope/analytics"
	"github.com/dsjohal14/quicksearch/internal/scope/catalog"
	"github.com/dsjohal14/quicksearch/internal/suggest"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Deps are the collaborators served by the HTTP handlers
type Deps struct {
	Catalog  catalog.Storage
	Service  *suggest.Service
	Engine   suggest.Engine
	Recorder analytics.Recorder
}

// Handler contains HTTP handlers for the API
type Handler struct {
	catalog  catalog.Storage
	service  *suggest.Service
	engine   suggest.Engine
	recorder analytics.Recorder
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Deps, logger zerolog.Logger) *Handler {
	return &Handler{
		catalog:  deps.Catalog,
		service:  deps.Service,
		engine:   deps.Engine,
		recorder: deps.Recorder,
		validate: validator.New(),
		logger:   logger,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
