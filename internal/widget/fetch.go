package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dsjohal14/quicksearch/internal/suggest"
)

// Fetcher performs a suggestion lookup
type Fetcher interface {
	Fetch(ctx context.Context, query string) (suggest.Response, error)
}

// HTTPFetcher queries the suggestion endpoint over HTTP
type HTTPFetcher struct {
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPFetcher creates a fetcher for endpoint. A nil client uses a
// client with a 10s timeout.
func NewHTTPFetcher(endpoint string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid suggest url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{endpoint: u, client: client}, nil
}

// Fetch issues GET endpoint?q=query
func (f *HTTPFetcher) Fetch(ctx context.Context, query string) (suggest.Response, error) {
	u := *f.endpoint
	values := u.Query()
	values.Set("q", query)
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return suggest.Response{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := f.client.Do(req)
	if err != nil {
		return suggest.Response{}, fmt.Errorf("suggest request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return suggest.Response{}, fmt.Errorf("suggest request failed: status %d", resp.StatusCode)
	}

	var out suggest.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return suggest.Response{}, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return out, nil
}
