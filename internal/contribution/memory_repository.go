package contribution

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries []Contribution
}

// NewMemoryRepository builds an in-memory contribution store for development
// and testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, c Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, c)
	return nil
}

func (r *memoryRepository) All(_ context.Context) ([]Contribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Contribution, len(r.entries))
	copy(out, r.entries)
	return out, nil
}
