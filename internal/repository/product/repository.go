package product

import (
	"context"

	"cartsync/internal/domain"
)

// Repository resolves the denormalized product fields the cart service
// snapshots into a line item. Catalog management is out of scope; this
// is a read-only lookup.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}
