// Package cartstorage persists the last-known cart under a versioned
// schema so a restart shows cart contents before the first network
// round-trip completes.
package cartstorage

import (
	"encoding/json"
	"errors"
	"log"

	"cartsync/internal/domain"
)

const (
	// StorageKey is the fixed key the cart record lives under.
	StorageKey = "cart-storage"

	// SchemaVersion tags every saved record. Older versions are
	// migrated forward on load; unknown versions are discarded.
	SchemaVersion = 2
)

type persistedCart struct {
	Cart *domain.Cart `json:"cart"`
}

type persistedState struct {
	State   persistedCart `json:"state"`
	Version int           `json:"version"`
}

// Adapter serializes the cart into a KV store. Save never fails the
// caller; storage trouble is logged and the mutation proceeds.
type Adapter struct {
	kv     KV
	logger *log.Logger
}

func NewAdapter(kv KV, logger *log.Logger) *Adapter {
	return &Adapter{kv: kv, logger: logger}
}

// Save writes the cart snapshot. Fire-and-forget: errors are logged,
// never propagated.
func (a *Adapter) Save(cart *domain.Cart) {
	rec := persistedState{State: persistedCart{Cart: cart}, Version: SchemaVersion}
	b, err := json.Marshal(rec)
	if err != nil {
		a.logger.Printf("cart storage: marshal: %v", err)
		return
	}
	if err := a.kv.Set(StorageKey, b); err != nil {
		a.logger.Printf("cart storage: save: %v", err)
	}
}

// Load returns the last saved cart, migrated to the current schema
// version, or nil when nothing usable is stored. Corrupt data is
// discarded, never surfaced.
func (a *Adapter) Load() *domain.Cart {
	b, err := a.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			a.logger.Printf("cart storage: load: %v", err)
		}
		return nil
	}

	var rec persistedState
	if err := json.Unmarshal(b, &rec); err != nil {
		a.logger.Printf("cart storage: discarding corrupt record: %v", err)
		return nil
	}
	if !migrateState(&rec) {
		a.logger.Printf("cart storage: discarding record with schema version %d", rec.Version)
		return nil
	}
	return rec.State.Cart
}

// Clear removes the persisted record.
func (a *Adapter) Clear() {
	if err := a.kv.Delete(StorageKey); err != nil {
		a.logger.Printf("cart storage: clear: %v", err)
	}
}

// migrateState walks the record forward one schema version at a time.
// Returns false when the version is unknown and the record must be
// dropped.
func migrateState(rec *persistedState) bool {
	for rec.Version < SchemaVersion {
		switch rec.Version {
		case 1:
			// v1 predates line-item attributes; anything present in
			// that field is untrusted and reset.
			if rec.State.Cart != nil {
				for i := range rec.State.Cart.Items {
					rec.State.Cart.Items[i].Attributes = nil
				}
			}
			rec.Version = 2
		default:
			return false
		}
	}
	return rec.Version == SchemaVersion
}
