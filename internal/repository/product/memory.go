package product

import (
	"context"
	"sync"

	"cartsync/internal/domain"
)

// memoryRepo serves the dev server and tests with a seeded product map.
type memoryRepo struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewMemory(products ...domain.Product) Repository {
	m := make(map[string]domain.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &memoryRepo{products: m}
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}
