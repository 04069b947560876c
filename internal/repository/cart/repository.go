package cart

import (
	"context"

	"cartsync/internal/domain"
)

type CreateCartInput struct {
	SessionID *string
	UserID    *string
	Currency  string
}

// Repository stores carts and their line items. Totals are not stored;
// the service layer derives them on read.
type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, item domain.CartItem) error
	SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	ClearItems(ctx context.Context, cartID string) error
	AssignUser(ctx context.Context, cartID, userID string) error
	Deactivate(ctx context.Context, cartID string) error
}
