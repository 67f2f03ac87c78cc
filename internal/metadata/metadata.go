// Package metadata defines the persistent key-value attribute store shared
// by orders, subscriptions, products and listings.
//
// The store follows the semantics of a loose entity-meta table: keys are
// not unique per entity, so the same key may accumulate multiple values.
// Two write disciplines are expressed as explicit contract methods rather
// than caller conventions:
//
//   - set-once flags: written only if the key is absent for the entity;
//     a second write is a silent no-op. Absence is the canonical "false".
//   - append-only values: every write adds another row, duplicates allowed.
//
// Both are only safe because the backing store serializes writes per
// entity; no additional locking happens here.
package metadata

import "context"

// Attribute keys used by the checkout integration.
const (
	// KeyListing marks a product as a listing product, and an order or
	// subscription as a listing purchase. Set-once, yes-or-nothing.
	KeyListing = "directory_listing"
	// KeyListingID links an order to the listing(s) bought through it.
	// Append-only, non-unique.
	KeyListingID = "directory_listing_id"
	// KeyOrderID is the back-reference from a listing to the order(s)
	// that purchased it. Append-only, non-unique.
	KeyOrderID = "directory_order_id"
)

// Repository is the entity attribute store.
type Repository interface {
	// GetFlag reports whether the set-once flag key is present for the
	// entity. A missing entity or key reads as false, never as an error.
	GetFlag(ctx context.Context, entityID, key string) (bool, error)

	// SetFlagOnce writes the flag key for the entity unless it is already
	// present. Re-setting an existing flag is a silent no-op.
	SetFlagOnce(ctx context.Context, entityID, key string) error

	// AppendValue adds another value for key on the entity. Values are
	// non-unique; repeated appends accumulate.
	AppendValue(ctx context.Context, entityID, key, value string) error

	// Values returns all accumulated values for key on the entity, in
	// insertion order. Missing entity or key yields an empty slice.
	Values(ctx context.Context, entityID, key string) ([]string, error)
}
