package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velvetree/listing-checkout/internal/domain/subscription"
)

const (
	createSubscriptionSQL = `INSERT INTO subscriptions (id, order_id, status)
		VALUES ($1, $2, $3)`

	getSubscriptionByIDSQL = `SELECT id, order_id, status, created_at
		FROM subscriptions WHERE id = $1`
)

// ErrSubscriptionNotFound is returned when a requested subscription does
// not exist.
var ErrSubscriptionNotFound = errors.New("subscription not found")

var _ subscription.Repository = (*SubscriptionRepository)(nil)

// SubscriptionRepository implements subscription.Repository backed by
// PostgreSQL.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository returns a SubscriptionRepository that uses the
// given pool.
func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Create persists a new subscription.
func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	_, err := r.pool.Exec(ctx, createSubscriptionSQL, s.ID, s.OrderID, s.Status)
	if err != nil {
		return fmt.Errorf("creating subscription %q: %w", s.ID, err)
	}
	return nil
}

// GetByID returns a single subscription by its identifier.
func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	var s subscription.Subscription
	err := r.pool.QueryRow(ctx, getSubscriptionByIDSQL, id).
		Scan(&s.ID, &s.OrderID, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("getting subscription %q: %w", id, err)
	}
	return &s, nil
}
