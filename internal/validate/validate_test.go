package validate

import (
	"testing"

	"cartsync/internal/domain"
)

func TestAddToCart(t *testing.T) {
	variant := "v-1"
	emptyVariant := "  "

	cases := []struct {
		name      string
		productID string
		quantity  int
		variantID *string
		wantErr   bool
	}{
		{name: "valid min quantity", productID: "P1", quantity: 1},
		{name: "valid max quantity", productID: "P1", quantity: 99},
		{name: "valid with variant", productID: "P1", quantity: 2, variantID: &variant},
		{name: "zero quantity", productID: "P1", quantity: 0, wantErr: true},
		{name: "quantity over limit", productID: "P1", quantity: 100, wantErr: true},
		{name: "negative quantity", productID: "P1", quantity: -1, wantErr: true},
		{name: "empty product id", productID: "", quantity: 1, wantErr: true},
		{name: "blank product id", productID: "   ", quantity: 1, wantErr: true},
		{name: "blank variant id", productID: "P1", quantity: 1, variantID: &emptyVariant, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := AddToCart(tc.productID, tc.quantity, tc.variantID)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if err.Code != domain.CodeValidation {
					t.Fatalf("expected VALIDATION_ERROR, got %s", err.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateItem(t *testing.T) {
	cases := []struct {
		name     string
		itemID   string
		quantity int
		wantErr  bool
	}{
		{name: "zero quantity is removal signal", itemID: "I1", quantity: 0},
		{name: "valid quantity", itemID: "I1", quantity: 3},
		{name: "max quantity", itemID: "I1", quantity: 99},
		{name: "quantity over limit", itemID: "I1", quantity: 100, wantErr: true},
		{name: "negative quantity", itemID: "I1", quantity: -1, wantErr: true},
		{name: "empty item id", itemID: "", quantity: 1, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := UpdateItem(tc.itemID, tc.quantity)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
