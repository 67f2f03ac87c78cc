package checkout

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/velvetree/listing-checkout/internal/hooks"
	"github.com/velvetree/listing-checkout/internal/metadata"
)

// ClassifyOrder derives the order-level listing-purchase flag once the
// order has been processed: if any line item resolves to a product whose
// listing flag is set, the order gains the flag too. The write is
// set-once, so re-running the classification is idempotent. Line items
// with no resolvable product reference are skipped, not errors.
//
// WasListingOrder on the event is the single source of truth for "is this
// a listing order"; the subscription classifier consumes it.
func (i *Integration) ClassifyOrder(ctx context.Context, e *hooks.OrderProcessed) error {
	matched := false
	for _, li := range e.Order.LineItems {
		ref := li.ProductRef()
		if ref == "" {
			continue
		}
		isListing, err := i.meta.GetFlag(ctx, ref, metadata.KeyListing)
		if err != nil || !isListing {
			continue
		}
		if err := i.meta.SetFlagOnce(ctx, e.OrderID, metadata.KeyListing); err != nil {
			return errors.Wrap(err, "flag order as listing purchase")
		}
		matched = true
	}
	e.WasListingOrder = matched
	return nil
}

// ClassifySubscription copies the listing-purchase flag from the
// originating order onto a subscription created from it. The order is
// re-classified first, so the subscription flag follows the order's line
// items even if OrderProcessed never fired for this order. No flag is
// written for non-listing orders: absence is the canonical false.
func (i *Integration) ClassifySubscription(ctx context.Context, e *hooks.SubscriptionCreated) error {
	op := hooks.OrderProcessed{
		OrderID: e.Order.ID,
		Posted:  e.Posted,
		Order:   e.Order,
	}
	if err := i.ClassifyOrder(ctx, &op); err != nil {
		return err
	}
	if !op.WasListingOrder {
		return nil
	}
	if err := i.meta.SetFlagOnce(ctx, e.Subscription.ID, metadata.KeyListing); err != nil {
		return errors.Wrap(err, "flag subscription as listing purchase")
	}
	return nil
}
