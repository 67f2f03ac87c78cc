package listing

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested listing does not exist.
var ErrNotFound = errors.New("listing not found")

// Listing is a directory entry that a customer unlocks by buying a listing
// product. A listing does not own the orders that reference it; the
// order↔listing linkage is informational and lives in entity metadata.
type Listing struct {
	ID    string
	Title string
}

// Repository defines read operations for directory listings.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Listing, error)
}
