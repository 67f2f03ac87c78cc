package checkout

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/velvetree/listing-checkout/internal/hooks"
	"github.com/velvetree/listing-checkout/internal/metadata"
)

// GuardAddToCart enforces purchase exclusivity for listing products: a
// listing product added to a non-empty cart empties the cart first and
// raises the redirect request for the calling handler. The Allowed verdict
// always passes through unchanged; exclusivity works purely through the
// cart-clearing side effect, so the add itself still proceeds.
//
// An empty cart needs no exclusivity check.
func (i *Integration) GuardAddToCart(ctx context.Context, e *hooks.AddToCartValidation) error {
	items, err := i.carts.Items(ctx, e.CartID)
	if err != nil {
		zctx.From(ctx).Warn("cart lookup failed, skipping exclusivity guard",
			zap.String("cart_id", e.CartID), zap.Error(err))
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	// Variation reference overrides the base product when present.
	ref := e.ProductID
	if e.VariationID != "" {
		ref = e.VariationID
	}

	isListing, err := i.meta.GetFlag(ctx, ref, metadata.KeyListing)
	if err != nil || !isListing {
		return nil
	}

	if err := i.carts.Clear(ctx, e.CartID); err != nil {
		zctx.From(ctx).Warn("failed to empty cart for listing purchase",
			zap.String("cart_id", e.CartID), zap.Error(err))
		return nil
	}
	e.RedirectRequested = true
	return nil
}
