// Package accel provides utilities for accelerated batch processing.
package accel

// Batch represents a batch processing helper
type Batch struct {
	size int
}

// NewBatch creates a new batch processor with the given size
func NewBatch(size int) *Batch {
	if size <= 0 {
		size = 100
	}
	return &Batch{size: size}
}

// Size returns the batch size
func (b *Batch) Size() int {
	return b.size
}

// Split cuts items into consecutive chunks of at most b.Size() elements.
// The chunks share the backing array of items.
func Split[T any](b *Batch, items []T) [][]T {
	if len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+b.size-1)/b.size)
	for start := 0; start < len(items); start += b.size {
		end := start + b.size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
