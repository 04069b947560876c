// Package cart implements the server-side cart operations behind the
// REST surface: owner-scoped fetch-or-create, line-item mutation with
// duplicate-line merging, and anonymous-to-user migration. Totals are
// derived here on every read; they are never stored.
package cart

import (
	"context"
	"errors"

	"cartsync/internal/domain"
	cartrepo "cartsync/internal/repository/cart"
)

const (
	// Tax and shipping policy, in minor units / basis points.
	taxRateBasisPoints         = 1600
	freeShippingThresholdCents = 5000
	shippingCostCents          = 500

	maxLineQuantity = 99

	defaultCurrency = "JOD"
)

var (
	// ErrQuantityLimit means a line would exceed the per-line cap.
	ErrQuantityLimit = errors.New("line quantity limit exceeded")
	// ErrProductUnavailable means the product is unknown or inactive.
	ErrProductUnavailable = errors.New("product not found or not available")
)

// Owner identifies the caller: an authenticated user id when present,
// otherwise the anonymous session id.
type Owner struct {
	SessionID string
	UserID    string
}

type cartRepo interface {
	Create(ctx context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error)
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

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	repo     cartRepo
	products productRepo
}

func New(repo cartrepo.Repository, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// GetOrCreate returns the owner's active cart, lazily creating one.
func (s *Service) GetOrCreate(ctx context.Context, owner Owner) (*domain.Cart, error) {
	cart, err := s.findActive(ctx, owner)
	if err == nil {
		return withTotals(cart), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	in := cartrepo.CreateCartInput{Currency: defaultCurrency}
	if owner.UserID != "" {
		in.UserID = &owner.UserID
	} else {
		in.SessionID = &owner.SessionID
	}
	cart, err = s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return withTotals(cart), nil
}

// AddItem appends a line item, or increments the existing line for the
// same product and variant. The merged quantity may not exceed the
// per-line cap.
func (s *Service) AddItem(ctx context.Context, cartID string, owner Owner, productID string, quantity int, variantID *string) (*domain.Cart, error) {
	cart, err := s.ownedCart(ctx, cartID, owner)
	if err != nil {
		return nil, err
	}

	if existing := findLine(cart, productID, variantID); existing != nil {
		merged := existing.Quantity + quantity
		if merged > maxLineQuantity {
			return nil, ErrQuantityLimit
		}
		if err := s.repo.SetItemQuantity(ctx, cart.ID, existing.ID, merged); err != nil {
			return nil, err
		}
		return s.refetch(ctx, cart.ID)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.Active {
		return nil, ErrProductUnavailable
	}

	item := domain.CartItem{
		ProductID: product.ID,
		VariantID: variantID,
		Quantity:  quantity,
		Price:     product.PriceCents,
		Image:     product.Image,
		Title:     product.Title,
		TitleAr:   product.TitleAr,
	}
	if err := s.repo.AddItem(ctx, cart.ID, item); err != nil {
		return nil, err
	}
	return s.refetch(ctx, cart.ID)
}

// UpdateItem sets a line item's quantity. Zero removes the line.
func (s *Service) UpdateItem(ctx context.Context, cartID string, owner Owner, itemID string, quantity int) (*domain.Cart, error) {
	cart, err := s.ownedCart(ctx, cartID, owner)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		err = s.repo.RemoveItem(ctx, cart.ID, itemID)
	} else {
		err = s.repo.SetItemQuantity(ctx, cart.ID, itemID, quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.refetch(ctx, cart.ID)
}

// RemoveItem deletes a line item; a miss is domain.ErrNotFound.
func (s *Service) RemoveItem(ctx context.Context, cartID string, owner Owner, itemID string) (*domain.Cart, error) {
	cart, err := s.ownedCart(ctx, cartID, owner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.refetch(ctx, cart.ID)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, cartID string, owner Owner) (*domain.Cart, error) {
	cart, err := s.ownedCart(ctx, cartID, owner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.refetch(ctx, cart.ID)
}

// Migrate folds the anonymous session's cart into the authenticated
// user's cart. With no user cart yet the session cart is reassigned
// outright; otherwise lines are merged (same product and variant sum,
// clamped to the cap) and the session cart is deactivated. Always
// returns the user's cart, even when the session had nothing to move.
func (s *Service) Migrate(ctx context.Context, sessionID, userID string) (*domain.Cart, error) {
	sessionCart, err := s.repo.GetActiveBySession(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.GetOrCreate(ctx, Owner{UserID: userID})
	}
	if err != nil {
		return nil, err
	}

	userCart, err := s.repo.GetActiveByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.repo.AssignUser(ctx, sessionCart.ID, userID); err != nil {
			return nil, err
		}
		return s.refetch(ctx, sessionCart.ID)
	}
	if err != nil {
		return nil, err
	}

	for _, item := range sessionCart.Items {
		if existing := findLine(userCart, item.ProductID, item.VariantID); existing != nil {
			merged := existing.Quantity + item.Quantity
			if merged > maxLineQuantity {
				merged = maxLineQuantity
			}
			if err := s.repo.SetItemQuantity(ctx, userCart.ID, existing.ID, merged); err != nil {
				return nil, err
			}
			continue
		}
		item.ID = ""
		if err := s.repo.AddItem(ctx, userCart.ID, item); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Deactivate(ctx, sessionCart.ID); err != nil {
		return nil, err
	}
	return s.refetch(ctx, userCart.ID)
}

func (s *Service) findActive(ctx context.Context, owner Owner) (*domain.Cart, error) {
	if owner.UserID != "" {
		return s.repo.GetActiveByUser(ctx, owner.UserID)
	}
	if owner.SessionID == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetActiveBySession(ctx, owner.SessionID)
}

// ownedCart fetches the cart and verifies the caller owns it; a cart
// belonging to someone else is indistinguishable from a missing one.
func (s *Service) ownedCart(ctx context.Context, cartID string, owner Owner) (*domain.Cart, error) {
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	switch {
	case owner.UserID != "":
		if cart.UserID == nil || *cart.UserID != owner.UserID {
			return nil, domain.ErrNotFound
		}
	case owner.SessionID != "":
		if cart.SessionID == nil || *cart.SessionID != owner.SessionID {
			return nil, domain.ErrNotFound
		}
	default:
		return nil, domain.ErrNotFound
	}
	return cart, nil
}

func (s *Service) refetch(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return withTotals(cart), nil
}

func findLine(cart *domain.Cart, productID string, variantID *string) *domain.CartItem {
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ProductID != productID {
			continue
		}
		if (item.VariantID == nil) != (variantID == nil) {
			continue
		}
		if item.VariantID != nil && *item.VariantID != *variantID {
			continue
		}
		return item
	}
	return nil
}

// withTotals derives the computed fields. An empty cart is all zeros,
// including shipping.
func withTotals(cart *domain.Cart) *domain.Cart {
	var itemCount int
	var subtotal int64
	for _, item := range cart.Items {
		itemCount += item.Quantity
		subtotal += item.Price * int64(item.Quantity)
	}

	cart.ItemCount = itemCount
	cart.Subtotal = subtotal
	if itemCount == 0 {
		cart.Tax = 0
		cart.Shipping = 0
		cart.Total = 0
		return cart
	}

	// Round half up on the basis-point tax rate.
	cart.Tax = (subtotal*taxRateBasisPoints + 5000) / 10000
	if subtotal > freeShippingThresholdCents {
		cart.Shipping = 0
	} else {
		cart.Shipping = shippingCostCents
	}
	cart.Total = cart.Subtotal + cart.Tax + cart.Shipping
	return cart
}
