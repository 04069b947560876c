// Package cartstore holds the client-side cart state machine: the
// last-known cart, the loading and drawer flags, the single current
// error, and the per-item in-flight guard. All cart mutation flows
// through it; collaborators read state via Snapshot or Subscribe.
package cartstore

import (
	"context"
	"sync"

	"cartsync/internal/domain"
	"cartsync/internal/validate"
)

// Transport is the network client the store drives. Implemented by
// cartclient.Client; tests substitute counters and blockers.
type Transport interface {
	GetCurrentCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, sessionID, productID string, quantity int, variantID *string) (*domain.Cart, error)
	UpdateItem(ctx context.Context, cartID, sessionID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cartID, sessionID, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, cartID, sessionID string) (*domain.Cart, error)
	MigrateSessionCart(ctx context.Context, sessionID string) (*domain.Cart, error)
}

// Persistence is the durable snapshot sink. Save and Clear never fail
// the caller.
type Persistence interface {
	Save(cart *domain.Cart)
	Load() *domain.Cart
	Clear()
}

// Sessions resolves the anonymous session identity.
type Sessions interface {
	GetOrCreate() string
}

type AddRequest struct {
	ProductID string
	Quantity  int
	VariantID *string
}

type UpdateRequest struct {
	ItemID   string
	Quantity int
}

// Snapshot is the read view handed to subscribers. The cart pointer is
// shared; callers must not modify it.
type Snapshot struct {
	Cart       *domain.Cart
	Loading    bool
	DrawerOpen bool
	Err        *domain.CartError
}

// Store owns the cart value and the in-flight guards. It is long-lived:
// one per composition root, injected into consumers.
type Store struct {
	transport   Transport
	persistence Persistence
	sessions    Sessions

	mu         sync.Mutex
	cart       *domain.Cart
	pending    int
	drawerOpen bool
	err        *domain.CartError
	inFlight   map[string]struct{}

	listeners    map[int]func(Snapshot)
	nextListener int
}

// New builds the store and primes it with the persisted cart, so a
// restart shows contents before the first network refresh lands.
func New(transport Transport, persistence Persistence, sessions Sessions) *Store {
	return &Store{
		transport:   transport,
		persistence: persistence,
		sessions:    sessions,
		cart:        persistence.Load(),
		inFlight:    make(map[string]struct{}),
		listeners:   make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Cart:       s.cart,
		Loading:    s.pending > 0,
		DrawerOpen: s.drawerOpen,
		Err:        s.err,
	}
}

// Subscribe registers a listener called after every state change. The
// returned function unsubscribes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// AddToCart validates, then appends or increments a line item. Dropped
// without effect while another mutation is loading. A successful add
// opens the drawer; update and remove do not.
func (s *Store) AddToCart(ctx context.Context, req AddRequest) {
	if verr := validate.AddToCart(req.ProductID, req.Quantity, req.VariantID); verr != nil {
		s.setError(verr)
		return
	}

	s.mu.Lock()
	if s.pending > 0 {
		s.mu.Unlock()
		return
	}
	s.pending++
	s.err = nil
	cartID := s.cartIDLocked()
	s.mu.Unlock()
	s.notify()

	sessionID := s.sessions.GetOrCreate()
	cart, err := s.ensureCartID(ctx, sessionID, cartID, func(cartID string) (*domain.Cart, error) {
		return s.transport.AddItem(ctx, cartID, sessionID, req.ProductID, req.Quantity, req.VariantID)
	})

	s.mu.Lock()
	s.pending--
	if err != nil {
		s.err = opError(err, domain.CodeAddToCart)
	} else {
		s.cart = cart
		s.drawerOpen = true
		s.persistence.Save(cart)
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateItem sets a line item's quantity; zero removes the item
// server-side. A second call for an item already mid-flight is dropped
// rather than queued.
func (s *Store) UpdateItem(ctx context.Context, req UpdateRequest) {
	if verr := validate.UpdateItem(req.ItemID, req.Quantity); verr != nil {
		s.setError(verr)
		return
	}

	if !s.acquireItem(req.ItemID) {
		return
	}
	s.notify()

	sessionID := s.sessions.GetOrCreate()
	s.mu.Lock()
	cartID := s.cartIDLocked()
	s.mu.Unlock()

	cart, err := s.ensureCartID(ctx, sessionID, cartID, func(cartID string) (*domain.Cart, error) {
		return s.transport.UpdateItem(ctx, cartID, sessionID, req.ItemID, req.Quantity)
	})
	s.releaseItem(req.ItemID, cart, err, domain.CodeUpdateItem)
}

// RemoveItem deletes a line item, with the same per-item guard as
// UpdateItem. A remove that misses surfaces ITEM_NOT_FOUND and leaves
// the last-known-good cart untouched.
func (s *Store) RemoveItem(ctx context.Context, itemID string) {
	if verr := validate.UpdateItem(itemID, 0); verr != nil {
		s.setError(verr)
		return
	}

	if !s.acquireItem(itemID) {
		return
	}
	s.notify()

	sessionID := s.sessions.GetOrCreate()
	s.mu.Lock()
	cartID := s.cartIDLocked()
	s.mu.Unlock()

	cart, err := s.ensureCartID(ctx, sessionID, cartID, func(cartID string) (*domain.Cart, error) {
		return s.transport.RemoveItem(ctx, cartID, sessionID, itemID)
	})
	s.releaseItem(itemID, cart, err, domain.CodeRemoveItem)
}

// ClearCart empties the cart. Guarded by the global loading flag; there
// is no single item to key on.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	if s.pending > 0 || s.cart == nil {
		s.mu.Unlock()
		return
	}
	s.pending++
	s.err = nil
	cartID := s.cart.ID
	s.mu.Unlock()
	s.notify()

	sessionID := s.sessions.GetOrCreate()
	cart, err := s.transport.ClearCart(ctx, cartID, sessionID)

	s.mu.Lock()
	s.pending--
	if err != nil {
		s.err = opError(err, domain.CodeClearCart)
	} else if cart != nil {
		s.cart = cart
		s.persistence.Save(cart)
	} else {
		// Cart was already gone server-side; drop ours too.
		s.cart = nil
		s.persistence.Clear()
	}
	s.mu.Unlock()
	s.notify()
}

// LoadCart fetches the server's view, both at startup and for manual
// refresh.
func (s *Store) LoadCart(ctx context.Context) {
	s.mu.Lock()
	if s.pending > 0 {
		s.mu.Unlock()
		return
	}
	s.pending++
	s.err = nil
	s.mu.Unlock()
	s.notify()

	sessionID := s.sessions.GetOrCreate()
	cart, err := s.transport.GetCurrentCart(ctx, sessionID)

	s.mu.Lock()
	s.pending--
	if err != nil {
		s.err = opError(err, domain.CodeLoadCart)
	} else {
		s.cart = cart
		s.persistence.Save(cart)
	}
	s.mu.Unlock()
	s.notify()
}

// MigrateSessionCart merges the anonymous cart into the authenticated
// user's cart. Called once by the auth collaborator at the moment
// authentication succeeds, never automatically by the store.
func (s *Store) MigrateSessionCart(ctx context.Context) {
	s.mu.Lock()
	if s.pending > 0 {
		s.mu.Unlock()
		return
	}
	s.pending++
	s.err = nil
	s.mu.Unlock()
	s.notify()

	sessionID := s.sessions.GetOrCreate()
	cart, err := s.transport.MigrateSessionCart(ctx, sessionID)

	s.mu.Lock()
	s.pending--
	if err != nil {
		s.err = opError(err, domain.CodeMigrateCart)
	} else {
		s.cart = cart
		s.persistence.Save(cart)
	}
	s.mu.Unlock()
	s.notify()
}

// OpenDrawer shows the cart drawer. Pure UI state, no guard.
func (s *Store) OpenDrawer() {
	s.mu.Lock()
	s.drawerOpen = true
	s.mu.Unlock()
	s.notify()
}

// CloseDrawer hides the drawer and clears any pending error; a
// dismissed drawer should not keep showing a stale banner.
func (s *Store) CloseDrawer() {
	s.mu.Lock()
	s.drawerOpen = false
	s.err = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ToggleDrawer() {
	s.mu.Lock()
	s.drawerOpen = !s.drawerOpen
	s.mu.Unlock()
	s.notify()
}

// ClearError resets the error field. A later operation's error silently
// supersedes an earlier unviewed one; only one is visible at a time.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	s.notify()
}

// ItemCount returns the server-computed item count, 0 with no cart.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.ItemCount
}

// Total returns the server-computed grand total in minor units.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.Total
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.IsEmpty()
}

// Item returns a copy of the line item with the given id.
func (s *Store) Item(itemID string) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it := s.cart.Item(itemID); it != nil {
		return *it, true
	}
	return domain.CartItem{}, false
}

// InFlight reports whether a mutation for the item is awaiting the
// server; UIs use it to dim the affected row.
func (s *Store) InFlight(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[itemID]
	return ok
}

func (s *Store) setError(err *domain.CartError) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.notify()
}

func (s *Store) cartIDLocked() string {
	if s.cart == nil {
		return ""
	}
	return s.cart.ID
}

// acquireItem is the check-and-insert guard step: atomic under the
// store mutex, so two calls for the same item can never both pass.
func (s *Store) acquireItem(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[itemID]; busy {
		return false
	}
	s.inFlight[itemID] = struct{}{}
	s.pending++
	s.err = nil
	return true
}

// releaseItem clears the guard and applies the outcome. Membership is
// removed on success and failure alike.
// opError coerces a failure to the operation's code: whichever call
// failed under an operation, that operation names the error. Only
// ITEM_NOT_FOUND survives as-is, since callers branch on it.
func opError(err error, code domain.ErrorCode) *domain.CartError {
	ce := domain.AsCartError(err, code)
	if ce.Code == code || ce.Code == domain.CodeItemNotFound {
		return ce
	}
	out := domain.NewCartError(code, ce.Message)
	out.Details = ce.Details
	return out
}

func (s *Store) releaseItem(itemID string, cart *domain.Cart, err error, code domain.ErrorCode) {
	s.mu.Lock()
	delete(s.inFlight, itemID)
	s.pending--
	if err != nil {
		s.err = opError(err, code)
	} else {
		s.cart = cart
		s.persistence.Save(cart)
	}
	s.mu.Unlock()
	s.notify()
}

// ensureCartID runs op against the known cart id, first asking the
// server for the cart when none is cached yet (first mutation on a
// fresh session).
func (s *Store) ensureCartID(ctx context.Context, sessionID, cartID string, op func(cartID string) (*domain.Cart, error)) (*domain.Cart, error) {
	if cartID == "" {
		current, err := s.transport.GetCurrentCart(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		cartID = current.ID
	}
	return op(cartID)
}
