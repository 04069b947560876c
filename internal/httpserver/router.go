package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"cartsync/internal/domain"
	cartsvc "cartsync/internal/service/cart"
)

// CartService is the slice of the cart service the handlers need.
type CartService interface {
	GetOrCreate(ctx context.Context, owner cartsvc.Owner) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, owner cartsvc.Owner, productID string, quantity int, variantID *string) (*domain.Cart, error)
	UpdateItem(ctx context.Context, cartID string, owner cartsvc.Owner, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cartID string, owner cartsvc.Owner, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string, owner cartsvc.Owner) (*domain.Cart, error)
	Migrate(ctx context.Context, sessionID, userID string) (*domain.Cart, error)
}

// Deps carries the services the router depends on.
type Deps struct {
	CartSvc CartService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil {
		return nil, errors.New("httpserver: cart service is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Accept", "X-User-ID"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := cartHandlers{svc: deps.CartSvc, logger: logger}
	router.GET("/cart/current", h.getCurrent)
	router.POST("/cart/migrate", h.migrate)
	router.POST("/cart/:cartId/items", h.addItem)
	router.PUT("/cart/:cartId/items/:itemId", h.updateItem)
	router.DELETE("/cart/:cartId/items/:itemId", h.removeItem)
	router.DELETE("/cart/:cartId", h.clear)

	return router, nil
}
