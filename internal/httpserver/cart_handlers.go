package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cartsync/internal/domain"
	cartsvc "cartsync/internal/service/cart"
	"cartsync/internal/validate"
)

const userIDHeader = "X-User-ID"

type cartHandlers struct {
	svc    CartService
	logger *log.Logger
}

type addItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	VariantID *string `json:"variantId"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type migrateRequest struct {
	SessionID string `json:"sessionId"`
}

func ownerFrom(c *gin.Context) cartsvc.Owner {
	return cartsvc.Owner{
		SessionID: strings.TrimSpace(c.Query("sessionId")),
		UserID:    strings.TrimSpace(c.GetHeader(userIDHeader)),
	}
}

func writeCart(c *gin.Context, status int, cart *domain.Cart) {
	c.JSON(status, gin.H{"data": cart})
}

func writeError(c *gin.Context, status int, code domain.ErrorCode, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

func writeValidationError(c *gin.Context, cerr *domain.CartError) {
	writeError(c, http.StatusBadRequest, cerr.Code, cerr.Message)
}

// writeServiceError maps service errors onto the wire taxonomy. ErrNotFound
// on a cart lookup carries the operation code so clients that only inspect
// the status still behave, while missing items get ITEM_NOT_FOUND.
func (h cartHandlers) writeServiceError(c *gin.Context, err error, itemOp bool, code domain.ErrorCode, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if itemOp {
			writeError(c, http.StatusNotFound, domain.CodeItemNotFound, "Item not found in cart")
			return
		}
		writeError(c, http.StatusNotFound, code, "Cart not found")
	case errors.Is(err, cartsvc.ErrQuantityLimit):
		writeError(c, http.StatusBadRequest, code, "Quantity limit exceeded for cart item")
	case errors.Is(err, cartsvc.ErrProductUnavailable):
		writeError(c, http.StatusBadRequest, code, "Product is not available")
	default:
		h.logger.Printf("cart: %s: %v", fallback, err)
		writeError(c, http.StatusInternalServerError, code, fallback)
	}
}

func (h cartHandlers) getCurrent(c *gin.Context) {
	owner := ownerFrom(c)
	if owner.SessionID == "" && owner.UserID == "" {
		writeError(c, http.StatusBadRequest, domain.CodeValidation, "sessionId query parameter or X-User-ID header is required")
		return
	}
	cart, err := h.svc.GetOrCreate(c.Request.Context(), owner)
	if err != nil {
		h.writeServiceError(c, err, false, domain.CodeGetCart, "Failed to get cart")
		return
	}
	writeCart(c, http.StatusOK, cart)
}

func (h cartHandlers) migrate(c *gin.Context) {
	userID := strings.TrimSpace(c.GetHeader(userIDHeader))
	if userID == "" {
		writeError(c, http.StatusUnauthorized, domain.CodeMigrateCart, "Authenticated user required to migrate a cart")
		return
	}
	var req migrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, domain.CodeValidation, "Invalid request body")
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		writeError(c, http.StatusBadRequest, domain.CodeValidation, "sessionId is required")
		return
	}
	cart, err := h.svc.Migrate(c.Request.Context(), req.SessionID, userID)
	if err != nil {
		h.writeServiceError(c, err, false, domain.CodeMigrateCart, "Failed to migrate cart")
		return
	}
	writeCart(c, http.StatusOK, cart)
}

func (h cartHandlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, domain.CodeValidation, "Invalid request body")
		return
	}
	if cerr := validate.AddToCart(req.ProductID, req.Quantity, req.VariantID); cerr != nil {
		writeValidationError(c, cerr)
		return
	}
	cart, err := h.svc.AddItem(c.Request.Context(), c.Param("cartId"), ownerFrom(c), req.ProductID, req.Quantity, req.VariantID)
	if err != nil {
		h.writeServiceError(c, err, false, domain.CodeAddToCart, "Failed to add item to cart")
		return
	}
	writeCart(c, http.StatusOK, cart)
}

func (h cartHandlers) updateItem(c *gin.Context) {
	itemID := c.Param("itemId")
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, domain.CodeValidation, "Invalid request body")
		return
	}
	if cerr := validate.UpdateItem(itemID, req.Quantity); cerr != nil {
		writeValidationError(c, cerr)
		return
	}
	cart, err := h.svc.UpdateItem(c.Request.Context(), c.Param("cartId"), ownerFrom(c), itemID, req.Quantity)
	if err != nil {
		h.writeServiceError(c, err, true, domain.CodeUpdateItem, "Failed to update cart item")
		return
	}
	writeCart(c, http.StatusOK, cart)
}

func (h cartHandlers) removeItem(c *gin.Context) {
	cart, err := h.svc.RemoveItem(c.Request.Context(), c.Param("cartId"), ownerFrom(c), c.Param("itemId"))
	if err != nil {
		h.writeServiceError(c, err, true, domain.CodeRemoveItem, "Failed to remove cart item")
		return
	}
	writeCart(c, http.StatusOK, cart)
}

func (h cartHandlers) clear(c *gin.Context) {
	cart, err := h.svc.Clear(c.Request.Context(), c.Param("cartId"), ownerFrom(c))
	if err != nil {
		h.writeServiceError(c, err, false, domain.CodeClearCart, "Failed to clear cart")
		return
	}
	writeCart(c, http.StatusOK, cart)
}
