// Package httpapi provides HTTP handlers and data transfer objects for the Quicksearch API.
package httpapi

import (
	"time"

	"github.com/dsjohal14/quicksearch/internal/scope/analytics"
	"github.com/dsjohal14/quicksearch/internal/suggest"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	ProductCount int    `json:"product_count"`
}

// ProductRequest represents a catalog product ingestion request
type ProductRequest struct {
	ID            string    `json:"id" validate:"required,max=64"`
	SKU           string    `json:"sku" validate:"max=64"`
	Name          string    `json:"name" validate:"required,max=255"`
	Price         int64     `json:"price" validate:"gte=0"`                // Minor units
	Currency      string    `json:"currency" validate:"omitempty,iso4217"` // ISO 4217, default USD
	Image         string    `json:"image" validate:"max=512"`
	URLKey        string    `json:"url_key" validate:"max=255"`
	RatingSummary int       `json:"rating_summary" validate:"gte=0,lte=100"`
	ReviewCount   int       `json:"review_count" validate:"gte=0"`
	CreatedAt     time.Time `json:"created_at,omitempty"` // Auto-set if not provided
}

// ProductResponse represents ingestion response
type ProductResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SearchResultsResponse is one page of the full results listing
type SearchResultsResponse struct {
	Query   string         `json:"query"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Results []suggest.Item `json:"results"`
}

// PopularResponse lists the most searched terms
type PopularResponse struct {
	Terms []analytics.Term `json:"terms"`
	Count int              `json:"count"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
