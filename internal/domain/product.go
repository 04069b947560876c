package domain

// Product carries the denormalized fields the cart service needs to
// build a line item. Catalog management lives elsewhere.
type Product struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TitleAr    string `json:"titleAr,omitempty"`
	PriceCents int64  `json:"priceCents"`
	Image      string `json:"image,omitempty"`
	Active     bool   `json:"active"`
}
