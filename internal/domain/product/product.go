package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. A product may be
// a variation of another product (Parent set) or a recurring product that
// spawns a subscription at checkout.
//
// Whether a product unlocks a directory listing is not stored here: the
// listing flag lives in entity metadata keyed by the product ID, so the
// checkout integration reads it the same way for base products and
// variations.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Parent    string
	Recurring bool
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
