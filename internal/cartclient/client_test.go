package cartclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cartsync/internal/domain"
)

func writeCart(t *testing.T, w http.ResponseWriter, cart domain.Cart) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": cart}); err != nil {
		t.Fatalf("encode cart: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
}

func TestGetCurrentCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/cart/current" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("sessionId"); got != "sess-1" {
			t.Fatalf("expected sessionId query, got %q", got)
		}
		writeCart(t, w, domain.Cart{ID: "C1", Currency: "JOD"})
	}))
	defer srv.Close()

	cart, err := New(srv.URL).GetCurrentCart(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentCart: %v", err)
	}
	if cart.ID != "C1" || cart.Currency != "JOD" {
		t.Fatalf("unexpected cart %+v", cart)
	}
}

func TestAddItemSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/cart/C1/items" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
			VariantID string `json:"variantId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.ProductID != "P1" || body.Quantity != 2 || body.VariantID != "V1" {
			t.Fatalf("unexpected body %+v", body)
		}
		writeCart(t, w, domain.Cart{ID: "C1", ItemCount: 2})
	}))
	defer srv.Close()

	variant := "V1"
	cart, err := New(srv.URL).AddItem(context.Background(), "C1", "sess-1", "P1", 2, &variant)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if cart.ItemCount != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "cart item I9 not found")
	}))
	defer srv.Close()

	_, err := New(srv.URL).UpdateItem(context.Background(), "C1", "sess-1", "I9", 3)
	ce := domain.AsCartError(err, domain.CodeUpdateItem)
	if ce == nil || ce.Code != domain.CodeItemNotFound {
		t.Fatalf("expected ITEM_NOT_FOUND, got %v", err)
	}
}

func TestRemoveItemNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "cart item I9 not found")
	}))
	defer srv.Close()

	_, err := New(srv.URL).RemoveItem(context.Background(), "C1", "sess-1", "I9")
	ce := domain.AsCartError(err, domain.CodeRemoveItem)
	if ce == nil || ce.Code != domain.CodeItemNotFound {
		t.Fatalf("expected ITEM_NOT_FOUND, got %v", err)
	}
}

func TestClearCartToleratesMissingCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "CART_NOT_FOUND", "cart not found")
	}))
	defer srv.Close()

	cart, err := New(srv.URL).ClearCart(context.Background(), "C1", "sess-1")
	if err != nil {
		t.Fatalf("expected 404 to be tolerated, got %v", err)
	}
	if cart != nil {
		t.Fatalf("expected nil cart, got %+v", cart)
	}
}

func TestServerErrorGetsOperationCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "boom")
	}))
	defer srv.Close()

	_, err := New(srv.URL).AddItem(context.Background(), "C1", "sess-1", "P1", 1, nil)
	ce := domain.AsCartError(err, domain.CodeAddToCart)
	if ce.Code != domain.CodeAddToCart {
		t.Fatalf("expected ADD_TO_CART_ERROR, got %s", ce.Code)
	}
	if ce.Message != "boom" {
		t.Fatalf("expected server message to survive, got %q", ce.Message)
	}
}

func TestNetworkErrorGetsOperationCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := New(srv.URL).GetCurrentCart(context.Background(), "sess-1")
	ce := domain.AsCartError(err, domain.CodeGetCart)
	if ce == nil || ce.Code != domain.CodeGetCart {
		t.Fatalf("expected GET_CART_ERROR, got %v", err)
	}
}

func TestMigrateSendsUserIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/cart/migrate" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-User-ID"); got != "U1" {
			t.Fatalf("expected X-User-ID header, got %q", got)
		}
		var body struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.SessionID != "sess-1" {
			t.Fatalf("unexpected sessionId %q", body.SessionID)
		}
		writeCart(t, w, domain.Cart{ID: "C2"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetUserID("U1")
	cart, err := c.MigrateSessionCart(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("MigrateSessionCart: %v", err)
	}
	if cart.ID != "C2" {
		t.Fatalf("unexpected cart %+v", cart)
	}
}
