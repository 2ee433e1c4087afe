// Package suggest builds the quick-search suggestion payload returned while
// a shopper is typing: a bounded list of matching items plus the total match
// count and a link to the full results page.
package suggest

// MaxResultDisplay is the maximum number of items returned in a suggestion
// response. Info.Size still reports the full match count.
const MaxResultDisplay = 5

// Item is one matched catalog entry, already resolved for display
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Price   string `json:"price"`             // Formatted, currency included
	Reviews string `json:"reviews,omitempty"` // Review summary markup, empty when there are no reviews
	Image   string `json:"image"`
	URL     string `json:"url"`
}

// Info describes the unbounded result set behind a suggestion response
type Info struct {
	Size int    `json:"size"`
	URL  string `json:"url"`
}

// Response is the suggestion payload
type Response struct {
	Results []Item `json:"results"`
	Info    Info   `json:"info"`
}

// Query is a single search query and its analytics state.
// It lives for one request; recorders decide whether anything outlives it.
type Query struct {
	ID          int64
	Text        string
	IsActive    bool
	IsProcessed bool
	ResultCount int
}

// URLBuilder produces the full search results URL for a query text
type URLBuilder interface {
	Build(text string) string
}

// Format bounds items to MaxResultDisplay, keeping their order, and fills in
// the response info from the untruncated list.
func Format(items []Item, query Query, urls URLBuilder) Response {
	n := len(items)
	if n > MaxResultDisplay {
		n = MaxResultDisplay
	}

	results := make([]Item, n)
	copy(results, items[:n])

	return Response{
		Results: results,
		Info: Info{
			Size: len(items),
			URL:  urls.Build(query.Text),
		},
	}
}
