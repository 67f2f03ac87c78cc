package cart

import "context"

// Item is a single entry in a customer's cart. Items are transient: they
// exist between add-to-cart and checkout (or an explicit clear) and are
// keyed by a cart-session-scoped key.
//
// ListingID is optional extra data captured from the add-to-cart request:
// the directory listing this purchase is meant to unlock. It travels with
// the item until checkout, where it is copied onto the order line item.
type Item struct {
	Key         string `json:"key"`
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
	ListingID   string `json:"listing_id,omitempty"`
}

// Store persists cart contents per cart session. Implementations are
// expected to serialize writes per cart; the checkout integration relies on
// that for its clear-then-add exclusivity behaviour.
type Store interface {
	// Items returns all items in the cart, in insertion order.
	// An unknown cart ID yields an empty slice, not an error.
	Items(ctx context.Context, cartID string) ([]Item, error)
	Add(ctx context.Context, cartID string, item Item) error
	Clear(ctx context.Context, cartID string) error
}
