package httpapi

import (
	"github.com/dsjohal14/quicksearch/internal/libs/obs"
	"github.com/dsjohal14/quicksearch/internal/scope/search"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes served by the API
const (
	SuggestPath = "/search/ajax/suggest"
	ResultsPath = search.ResultPath
	PopularPath = "/search/term/popular"
)

// NewRouter wires the handlers onto a chi router. A nil limiter disables
// rate limiting of the suggest route.
func NewRouter(h *Handler, limiter *IPRateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)
	r.Post("/products", h.HandleIngest)
	r.Get(ResultsPath, h.HandleSearch)
	r.Get(PopularPath, h.HandlePopular)

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Get(SuggestPath, h.HandleSuggest)
	})

	return r
}
