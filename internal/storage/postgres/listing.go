package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velvetree/listing-checkout/internal/domain/listing"
)

const getListingByIDSQL = `SELECT id, title FROM listings WHERE id = $1`

var _ listing.Repository = (*ListingRepository)(nil)

// ListingRepository implements listing.Repository backed by PostgreSQL.
type ListingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository returns a ListingRepository that uses the given pool.
func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

// GetByID returns a single listing by its identifier.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*listing.Listing, error) {
	var l listing.Listing
	err := r.pool.QueryRow(ctx, getListingByIDSQL, id).Scan(&l.ID, &l.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, listing.ErrNotFound
		}
		return nil, fmt.Errorf("getting listing %q: %w", id, err)
	}
	return &l, nil
}
