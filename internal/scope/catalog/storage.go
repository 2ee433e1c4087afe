package catalog

// Storage is the interface for product storage
type Storage interface {
	// Add adds or replaces a product
	Add(p Product) error

	// Get returns a product by ID
	Get(id string) (Product, error)

	// Search returns all products matching the text, best match first
	Search(text string) []Product

	// Count returns the number of products
	Count() int

	// Flush persists any pending changes
	Flush() error

	// Close flushes and closes the storage
	Close() error
}

var _ Storage = (*Store)(nil)
