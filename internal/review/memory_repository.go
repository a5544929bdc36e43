package review

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps reviews in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	reviews []Review
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Insert(_ context.Context, r *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *MemoryRepository) List(_ context.Context) ([]Review, error) {
	m.mu.RLock()
	out := make([]Review, len(m.reviews))
	copy(out, m.reviews)
	m.mu.RUnlock()

	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
