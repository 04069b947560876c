package domain

import "time"

// Monetary amounts are integer minor units (cents) throughout.

// Cart is the server-authoritative aggregate. Totals are computed
// server-side; clients replace their copy wholesale after every mutation.
type Cart struct {
	ID        string     `json:"id"`
	SessionID *string    `json:"-"`
	UserID    *string    `json:"-"`
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Subtotal  int64      `json:"subtotal"`
	Tax       int64      `json:"tax"`
	Shipping  int64      `json:"shipping"`
	Total     int64      `json:"total"`
	Currency  string     `json:"currency"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID         string              `json:"id"`
	ProductID  string              `json:"productId"`
	VariantID  *string             `json:"variantId,omitempty"`
	Quantity   int                 `json:"quantity"`
	Price      int64               `json:"price"`
	Image      string              `json:"image,omitempty"`
	Title      string              `json:"title"`
	TitleAr    string              `json:"titleAr,omitempty"`
	Attributes []CartItemAttribute `json:"attributes,omitempty"`
}

// CartItemAttribute records a variant-like selection (color, size)
// with an optional price adjustment.
type CartItemAttribute struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	PriceDelta int64  `json:"priceDelta,omitempty"`
}

// Item returns the line item with the given id, or nil.
func (c *Cart) Item(itemID string) *CartItem {
	if c == nil {
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// IsEmpty reports whether the cart holds no line items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
