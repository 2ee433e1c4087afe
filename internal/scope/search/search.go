// Package search provides the storefront search capabilities behind quick-search:
// the catalog-backed suggestion engine, the query length policy and result URLs.
package search

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dsjohal14/quicksearch/internal/scope/catalog"
	"github.com/dsjohal14/quicksearch/internal/suggest"
)

// ResultPath is the path of the full search results page
const ResultPath = "/catalogsearch/result"

// Catalog is the product lookup used by the engine
type Catalog interface {
	Search(text string) []catalog.Product
}

// CatalogEngine resolves catalog matches into display-ready suggestion items
type CatalogEngine struct {
	catalog   Catalog
	presenter Presenter
}

// NewCatalogEngine creates a catalog-backed engine
func NewCatalogEngine(c Catalog, presenter Presenter) *CatalogEngine {
	return &CatalogEngine{
		catalog:   c,
		presenter: presenter,
	}
}

// Items returns every matching item, ranked
func (e *CatalogEngine) Items(ctx context.Context, text string) ([]suggest.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products := e.catalog.Search(text)
	items := make([]suggest.Item, len(products))
	for i := range products {
		items[i] = e.presenter.Item(products[i])
	}
	return items, nil
}

// LengthPolicy flags queries shorter than Min runes
type LengthPolicy struct {
	Min int
}

// MinQueryLengthActive reports whether text is below the minimum query length
func (p LengthPolicy) MinQueryLengthActive(text string) bool {
	if p.Min <= 0 {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(text)) < p.Min
}

// ResultURLBuilder builds links to the full results page
type ResultURLBuilder struct {
	BaseURL string
}

// Build returns the results page URL re-running text
func (b ResultURLBuilder) Build(text string) string {
	return joinURL(b.BaseURL, ResultPath) + "?" + url.Values{"q": {text}}.Encode()
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

var (
	_ suggest.Engine     = (*CatalogEngine)(nil)
	_ suggest.Policy     = LengthPolicy{}
	_ suggest.URLBuilder = ResultURLBuilder{}
)
