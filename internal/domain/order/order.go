package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusCancelled  Status = "cancelled"
)

// Order represents a completed checkout. Line items are fixed at creation
// time; classification flags (such as the listing-purchase flag) live in
// entity metadata, not on the row itself.
type Order struct {
	ID        string
	Status    Status
	Total     decimal.Decimal
	LineItems []LineItem
	CreatedAt time.Time
}

// LineItem is a single purchased product within an order. Meta carries
// human-labeled display entries copied from the cart item at checkout.
type LineItem struct {
	ID          string      `json:"id"`
	ProductID   string      `json:"product_id"`
	VariationID string      `json:"variation_id,omitempty"`
	Quantity    int         `json:"quantity"`
	Meta        []MetaEntry `json:"meta,omitempty"`
}

// MetaEntry is a labeled value attached to a line item for display on
// order summaries ("Listing" = <listing id>, and so on).
type MetaEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProductRef resolves the effective product reference for a line item:
// the variation when present, the base product otherwise. An empty result
// means the line item does not reference a resolvable product.
func (li LineItem) ProductRef() string {
	if li.VariationID != "" {
		return li.VariationID
	}
	return li.ProductID
}

// AddMeta appends a labeled display entry to the line item.
func (li *LineItem) AddMeta(label, value string) {
	li.Meta = append(li.Meta, MetaEntry{Label: label, Value: value})
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
