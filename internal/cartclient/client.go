// Package cartclient is the network half of the cart engine: it turns
// store-level intents into HTTP calls against the cart resource and
// normalizes responses into the canonical domain.Cart.
package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cartsync/internal/domain"
)

// DefaultTimeout bounds every request so a hung call always settles and
// releases the store's guards.
const DefaultTimeout = 15 * time.Second

// Client performs single-shot cart CRUD. No internal retries; failures
// come back as *domain.CartError with the operation's code.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu     sync.RWMutex
	userID string
}

func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: DefaultTimeout})
}

// NewWithHTTPClient lets callers supply a tuned http.Client (custom
// timeout, transport, test doubles).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// SetUserID attaches (or, with "", detaches) the authenticated identity
// sent with subsequent requests. The session id keeps flowing as a
// query parameter regardless.
func (c *Client) SetUserID(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

type cartEnvelope struct {
	Data *domain.Cart `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetCurrentCart fetches (or lazily creates) the caller's cart.
func (c *Client) GetCurrentCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, status, err := c.doCart(ctx, http.MethodGet, "/cart/current", sessionID, nil)
	if err != nil {
		return nil, wrap(err, status, domain.CodeGetCart)
	}
	return cart, nil
}

// AddItem appends or increments a line item.
func (c *Client) AddItem(ctx context.Context, cartID, sessionID, productID string, quantity int, variantID *string) (*domain.Cart, error) {
	body := map[string]interface{}{"productId": productID, "quantity": quantity}
	if variantID != nil {
		body["variantId"] = *variantID
	}
	path := fmt.Sprintf("/cart/%s/items", url.PathEscape(cartID))
	cart, status, err := c.doCart(ctx, http.MethodPost, path, sessionID, body)
	if err != nil {
		return nil, wrap(err, status, domain.CodeAddToCart)
	}
	return cart, nil
}

// UpdateItem sets a line item's quantity. A 404 means the item no
// longer exists server-side and maps to ITEM_NOT_FOUND.
func (c *Client) UpdateItem(ctx context.Context, cartID, sessionID, itemID string, quantity int) (*domain.Cart, error) {
	path := fmt.Sprintf("/cart/%s/items/%s", url.PathEscape(cartID), url.PathEscape(itemID))
	body := map[string]interface{}{"quantity": quantity}
	cart, status, err := c.doCart(ctx, http.MethodPut, path, sessionID, body)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, itemNotFound(itemID)
		}
		return nil, wrap(err, status, domain.CodeUpdateItem)
	}
	return cart, nil
}

// RemoveItem deletes a line item. A remove that misses reports
// ITEM_NOT_FOUND, uniformly with UpdateItem.
func (c *Client) RemoveItem(ctx context.Context, cartID, sessionID, itemID string) (*domain.Cart, error) {
	path := fmt.Sprintf("/cart/%s/items/%s", url.PathEscape(cartID), url.PathEscape(itemID))
	cart, status, err := c.doCart(ctx, http.MethodDelete, path, sessionID, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, itemNotFound(itemID)
		}
		return nil, wrap(err, status, domain.CodeRemoveItem)
	}
	return cart, nil
}

// ClearCart empties the cart. A missing cart already satisfies the
// caller's intent, so 404 is success with a nil cart.
func (c *Client) ClearCart(ctx context.Context, cartID, sessionID string) (*domain.Cart, error) {
	path := fmt.Sprintf("/cart/%s", url.PathEscape(cartID))
	cart, status, err := c.doCart(ctx, http.MethodDelete, path, sessionID, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, nil
		}
		return nil, wrap(err, status, domain.CodeClearCart)
	}
	return cart, nil
}

// MigrateSessionCart merges the anonymous session's cart into the
// authenticated caller's cart. Requires SetUserID to have been called.
func (c *Client) MigrateSessionCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, status, err := c.doCart(ctx, http.MethodPost, "/cart/migrate", "", map[string]interface{}{"sessionId": sessionID})
	if err != nil {
		return nil, wrap(err, status, domain.CodeMigrateCart)
	}
	return cart, nil
}

// doCart issues one request and decodes the {"data": cart} envelope.
// The returned status is 0 when the request never got a response.
func (c *Client) doCart(ctx context.Context, method, path, sessionID string, body interface{}) (*domain.Cart, int, error) {
	u := c.baseURL + path
	if sessionID != "" {
		u += "?sessionId=" + url.QueryEscape(sessionID)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.mu.RLock()
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, decodeError(raw, resp.StatusCode)
	}

	var env cartEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	if env.Data == nil {
		return nil, resp.StatusCode, fmt.Errorf("response missing cart data")
	}
	return env.Data, resp.StatusCode, nil
}

func decodeError(raw []byte, status int) error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		return fmt.Errorf("%s", env.Error.Message)
	}
	return fmt.Errorf("unexpected status %d", status)
}

func itemNotFound(itemID string) *domain.CartError {
	e := domain.NewCartError(domain.CodeItemNotFound, fmt.Sprintf("cart item %s not found", itemID))
	e.Details = map[string]string{"itemId": itemID}
	return e
}

// wrap turns a transport failure into the operation's typed error.
// Validation-grade rejections from the server (400) keep their message
// but still carry the operation code; the server is authoritative.
func wrap(err error, status int, code domain.ErrorCode) *domain.CartError {
	ce := domain.AsCartError(err, code)
	if status >= 400 {
		ce.Details = map[string]int{"status": status}
	}
	return ce
}
