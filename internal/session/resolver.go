// Package session produces and persists the anonymous session identity
// that anchors a cart before authentication.
package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cartsync/internal/cartstorage"
)

// StorageKey is the key the raw session-identity string lives under,
// independent of the cart record.
const StorageKey = "cart-session-id"

// Resolver hands out a stable session identifier. The identifier is
// created once and persisted indefinitely; it survives logout and may
// anchor future anonymous carts.
type Resolver struct {
	store  cartstorage.KV
	logger *log.Logger

	mu       sync.Mutex
	cached   string
	degraded bool
}

func NewResolver(store cartstorage.KV, logger *log.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// GetOrCreate returns the stored session identity, generating and
// persisting one on first call. When storage is unavailable it degrades
// to an in-memory identifier for the process lifetime; callers see the
// same contract either way.
func (r *Resolver) GetOrCreate() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" {
		return r.cached
	}

	b, err := r.store.Get(StorageKey)
	if err == nil {
		id := strings.TrimSpace(string(b))
		if id != "" {
			r.cached = id
			return id
		}
	} else if !errors.Is(err, cartstorage.ErrKeyNotFound) {
		r.degrade("read", err)
		return r.cached
	}

	id := newSessionID()
	if err := r.store.Set(StorageKey, []byte(id)); err != nil {
		r.degrade("write", err)
		return r.cached
	}
	r.cached = id
	return id
}

func (r *Resolver) degrade(op string, err error) {
	if !r.degraded {
		r.logger.Printf("session storage %s failed, using in-memory identity: %v", op, err)
		r.degraded = true
	}
	if r.cached == "" {
		r.cached = newSessionID()
	}
}

// Not a security boundary; uniqueness is what matters.
func newSessionID() string {
	return fmt.Sprintf("sess_%d_%s", time.Now().UnixMilli(), uuid.NewString())
}
