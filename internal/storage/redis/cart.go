// Package redis implements the session-scoped cart store on Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/velvetree/listing-checkout/internal/domain/cart"
)

// cartTTL bounds how long an abandoned cart survives. Every write
// refreshes the expiry.
const cartTTL = 48 * time.Hour

var _ cart.Store = (*CartStore)(nil)

// CartStore keeps each cart as a Redis list of JSON-encoded items, which
// preserves insertion order. Redis serializes commands per key, giving the
// per-cart write serialization the checkout integration relies on.
type CartStore struct {
	rdb *redis.Client
}

// NewCartStore creates a CartStore and verifies connectivity.
func NewCartStore(ctx context.Context, addr, password string, db int) (*CartStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &CartStore{rdb: rdb}, nil
}

// Close releases the underlying Redis connection.
func (s *CartStore) Close() error {
	return s.rdb.Close()
}

func cartKey(cartID string) string {
	return "cart:" + cartID
}

// Items returns all items in the cart in insertion order. An unknown cart
// yields an empty slice.
func (s *CartStore) Items(ctx context.Context, cartID string) ([]cart.Item, error) {
	raw, err := s.rdb.LRange(ctx, cartKey(cartID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading cart %q: %w", cartID, err)
	}

	items := make([]cart.Item, 0, len(raw))
	for _, entry := range raw {
		var it cart.Item
		if err := json.Unmarshal([]byte(entry), &it); err != nil {
			return nil, fmt.Errorf("decoding cart item in %q: %w", cartID, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// Add appends an item to the cart and refreshes the cart expiry.
func (s *CartStore) Add(ctx context.Context, cartID string, item cart.Item) error {
	encoded, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding cart item: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, cartKey(cartID), encoded)
	pipe.Expire(ctx, cartKey(cartID), cartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("adding item to cart %q: %w", cartID, err)
	}
	return nil
}

// Clear removes the cart entirely.
func (s *CartStore) Clear(ctx context.Context, cartID string) error {
	if err := s.rdb.Del(ctx, cartKey(cartID)).Err(); err != nil {
		return fmt.Errorf("clearing cart %q: %w", cartID, err)
	}
	return nil
}
