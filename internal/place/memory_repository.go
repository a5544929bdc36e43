package place

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps places in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	places []Place
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Insert(_ context.Context, p *Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.places = append(m.places, *p)
	return nil
}

func (m *MemoryRepository) List(_ context.Context) ([]Place, error) {
	m.mu.RLock()
	out := make([]Place, len(m.places))
	copy(out, m.places)
	m.mu.RUnlock()

	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Place) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
