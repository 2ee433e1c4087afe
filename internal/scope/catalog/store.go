// Package catalog provides product storage and lookup for the storefront search.
package catalog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a product does not exist
var ErrNotFound = errors.New("product not found")

const productsFile = "products.jsonl"

// Product is a catalog entry as stored on disk
type Product struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`    // Final price in minor units
	Currency      string    `json:"currency"` // ISO 4217 code
	Image         string    `json:"image"`    // Media path, relative to the media base URL
	URLKey        string    `json:"url_key"`
	RatingSummary int       `json:"rating_summary"` // 0-100
	ReviewCount   int       `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store manages on-disk storage of products and their search index
type Store struct {
	dataDir  string
	mu       sync.RWMutex
	products map[string]Product
	order    []string // Insertion order, kept for stable file output
	index    *Index
	modified bool
}

// NewStore creates a new store with the given data directory
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{
		dataDir:  dataDir,
		products: make(map[string]Product),
		index:    NewIndex(),
	}

	// Load existing data if present
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	return s, nil
}

// Add adds or replaces a product
func (s *Store) Add(p Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = p
	s.index.Put(p)
	s.modified = true
	return nil
}

// Get returns a product by ID
func (s *Store) Get(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Search returns every product matching text, best match first.
// Products whose name starts with the query rank first, then products where
// every query token is a whole word of the name, then the remaining prefix
// matches. Ties are broken by name and ID.
func (s *Store) Search(text string) []Product {
	ids := s.index.Match(text)
	if len(ids) == 0 {
		return []Product{}
	}

	s.mu.RLock()
	results := make([]Product, 0, len(ids))
	for id := range ids {
		if p, ok := s.products[id]; ok {
			results = append(results, p)
		}
	}
	s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(text))
	queryTokens := Tokenize(text)
	scores := make(map[string]int, len(results))
	for _, p := range results {
		scores[p.ID] = matchScore(p, query, queryTokens)
	}

	sort.Slice(results, func(i, j int) bool {
		si, sj := scores[results[i].ID], scores[results[j].ID]
		if si != sj {
			return si > sj
		}
		ni, nj := strings.ToLower(results[i].Name), strings.ToLower(results[j].Name)
		if ni != nj {
			return ni < nj
		}
		return results[i].ID < results[j].ID
	})

	return results
}

func matchScore(p Product, query string, queryTokens []string) int {
	name := strings.ToLower(p.Name)
	if strings.HasPrefix(name, query) {
		return 3
	}

	words := make(map[string]struct{})
	for _, w := range Tokenize(p.Name) {
		words[w] = struct{}{}
	}
	for _, tok := range queryTokens {
		if _, ok := words[tok]; !ok {
			return 1
		}
	}
	return 2
}

// Count returns the number of products in the store
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Flush writes the store to disk
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modified {
		return nil // No changes to write
	}

	if err := s.writeProducts(); err != nil {
		return err
	}

	s.modified = false
	return nil
}

// Close flushes and closes the store
func (s *Store) Close() error {
	return s.Flush()
}

// writeProducts writes products to a JSONL file, replacing it atomically
func (s *Store) writeProducts() error {
	path := filepath.Join(s.dataDir, productsFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create products file: %w", err)
	}

	w := bufio.NewWriter(f)
	encoder := json.NewEncoder(w)
	for i, id := range s.order {
		if err := encoder.Encode(s.products[id]); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to encode product %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write products file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close products file: %w", err)
	}

	return os.Rename(tmp, path)
}

// load reads the store from disk
func (s *Store) load() error {
	path := filepath.Join(s.dataDir, productsFile)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var p Product
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			return fmt.Errorf("failed to decode product: %w", err)
		}
		if _, exists := s.products[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = p
		s.index.Put(p)
	}

	return scanner.Err()
}
