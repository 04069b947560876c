package cart

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"cartsync/internal/domain"
	"cartsync/internal/migrate"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_items, carts CASCADE`); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
}

func TestPostgres_CartLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	sessionID := "sess-pg"
	created, err := repo.Create(ctx, CreateCartInput{SessionID: &sessionID, Currency: "JOD"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	variant := "V1"
	if err := repo.AddItem(ctx, created.ID, domain.CartItem{
		ProductID: "P1",
		VariantID: &variant,
		Quantity:  2,
		Price:     1000,
		Title:     "Serum",
		TitleAr:   "سيروم",
		Attributes: []domain.CartItemAttribute{
			{Name: "size", Value: "30ml", PriceDelta: 200},
		},
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	cart, err := repo.GetActiveBySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetActiveBySession: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected one item, got %+v", cart.Items)
	}
	item := cart.Items[0]
	if item.VariantID == nil || *item.VariantID != "V1" {
		t.Fatalf("variant id lost: %+v", item)
	}
	if len(item.Attributes) != 1 || item.Attributes[0].PriceDelta != 200 {
		t.Fatalf("attributes lost: %+v", item.Attributes)
	}

	if err := repo.SetItemQuantity(ctx, cart.ID, item.ID, 7); err != nil {
		t.Fatalf("SetItemQuantity: %v", err)
	}
	if err := repo.SetItemQuantity(ctx, cart.ID, "00000000-0000-0000-0000-000000000000", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.AssignUser(ctx, cart.ID, "U1"); err != nil {
		t.Fatalf("AssignUser: %v", err)
	}
	byUser, err := repo.GetActiveByUser(ctx, "U1")
	if err != nil {
		t.Fatalf("GetActiveByUser: %v", err)
	}
	if byUser.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", byUser.Items[0].Quantity)
	}

	if err := repo.Deactivate(ctx, cart.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if _, err := repo.GetByID(ctx, cart.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deactivated cart to be gone, got %v", err)
	}
}
