// Package validate holds the pure request checks that run before any
// network call. A request rejected here never reaches the transport.
package validate

import (
	"fmt"
	"strings"

	"cartsync/internal/domain"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// AddToCart checks an add request. Quantity must be within
// [MinQuantity, MaxQuantity]; zero is never a valid add.
func AddToCart(productID string, quantity int, variantID *string) *domain.CartError {
	if strings.TrimSpace(productID) == "" {
		return domain.NewCartError(domain.CodeValidation, "product id is required")
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return domain.NewCartError(domain.CodeValidation,
			fmt.Sprintf("quantity must be between %d and %d", MinQuantity, MaxQuantity))
	}
	if variantID != nil && strings.TrimSpace(*variantID) == "" {
		return domain.NewCartError(domain.CodeValidation, "variant id must not be empty if provided")
	}
	return nil
}

// UpdateItem checks an update request. Quantity zero is permitted and
// signals removal of the line item.
func UpdateItem(itemID string, quantity int) *domain.CartError {
	if strings.TrimSpace(itemID) == "" {
		return domain.NewCartError(domain.CodeValidation, "item id is required")
	}
	if quantity < 0 || quantity > MaxQuantity {
		return domain.NewCartError(domain.CodeValidation,
			fmt.Sprintf("quantity must be between 0 and %d", MaxQuantity))
	}
	return nil
}
