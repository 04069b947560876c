package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"cartsync/internal/domain"
)

// memoryRepo backs the dev server and handler tests. Behavior mirrors
// the postgres repository, including not-found semantics.
type memoryRepo struct {
	mu    sync.Mutex
	carts map[string]*memoryCart
}

type memoryCart struct {
	cart   domain.Cart
	active bool
}

func NewMemory() Repository {
	return &memoryRepo{carts: make(map[string]*memoryCart)}
}

func (r *memoryRepo) Create(_ context.Context, in CreateCartInput) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := domain.Cart{
		ID:        uuid.NewString(),
		SessionID: copyPtr(in.SessionID),
		UserID:    copyPtr(in.UserID),
		Items:     []domain.CartItem{},
		Currency:  in.Currency,
		UpdatedAt: time.Now().UTC(),
	}
	r.carts[cart.ID] = &memoryCart{cart: cart, active: true}
	out := cloneCart(cart)
	return &out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.carts[id]
	if !ok || !rec.active {
		return nil, domain.ErrNotFound
	}
	out := cloneCart(rec.cart)
	return &out, nil
}

func (r *memoryRepo) GetActiveBySession(_ context.Context, sessionID string) (*domain.Cart, error) {
	return r.findActive(func(c *domain.Cart) bool {
		return c.SessionID != nil && *c.SessionID == sessionID
	})
}

func (r *memoryRepo) GetActiveByUser(_ context.Context, userID string) (*domain.Cart, error) {
	return r.findActive(func(c *domain.Cart) bool {
		return c.UserID != nil && *c.UserID == userID
	})
}

func (r *memoryRepo) findActive(match func(*domain.Cart) bool) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.carts {
		if rec.active && match(&rec.cart) {
			out := cloneCart(rec.cart)
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) AddItem(_ context.Context, cartID string, item domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.carts[cartID]
	if !ok || !rec.active {
		return domain.ErrNotFound
	}
	item.ID = uuid.NewString()
	rec.cart.Items = append(rec.cart.Items, item)
	rec.cart.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) SetItemQuantity(_ context.Context, cartID, itemID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.carts[cartID]
	if !ok || !rec.active {
		return domain.ErrNotFound
	}
	for i := range rec.cart.Items {
		if rec.cart.Items[i].ID == itemID {
			rec.cart.Items[i].Quantity = quantity
			rec.cart.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) RemoveItem(_ context.Context, cartID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.carts[cartID]
	if !ok || !rec.active {
		return domain.ErrNotFound
	}
	for i := range rec.cart.Items {
		if rec.cart.Items[i].ID == itemID {
			rec.cart.Items = append(rec.cart.Items[:i], rec.cart.Items[i+1:]...)
			rec.cart.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) ClearItems(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.carts[cartID]
	if !ok || !rec.active {
		return domain.ErrNotFound
	}
	rec.cart.Items = []domain.CartItem{}
	rec.cart.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) AssignUser(_ context.Context, cartID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.carts[cartID]
	if !ok || !rec.active {
		return domain.ErrNotFound
	}
	rec.cart.UserID = &userID
	rec.cart.SessionID = nil
	rec.cart.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) Deactivate(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.carts[cartID]
	if !ok || !rec.active {
		return domain.ErrNotFound
	}
	rec.active = false
	return nil
}

func cloneCart(c domain.Cart) domain.Cart {
	out := c
	out.SessionID = copyPtr(c.SessionID)
	out.UserID = copyPtr(c.UserID)
	out.Items = make([]domain.CartItem, len(c.Items))
	copy(out.Items, c.Items)
	for i := range out.Items {
		out.Items[i].VariantID = copyPtr(c.Items[i].VariantID)
		if len(c.Items[i].Attributes) > 0 {
			attrs := make([]domain.CartItemAttribute, len(c.Items[i].Attributes))
			copy(attrs, c.Items[i].Attributes)
			out.Items[i].Attributes = attrs
		}
	}
	return out
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
