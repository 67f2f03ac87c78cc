package subscription

import (
	"context"
	"time"
)

// Subscription is a recurring purchase derived from an order at checkout.
// It keeps a reference to its originating order; classification flags are
// copied from that order once, at creation time, and stored in entity
// metadata.
type Subscription struct {
	ID        string
	OrderID   string
	Status    string
	CreatedAt time.Time
}

// Repository defines persistence operations for subscriptions.
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
}
