package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/velvetree/listing-checkout/internal/hooks"
	"github.com/velvetree/listing-checkout/internal/metadata"
)

// CaptureListingID copies the listing identifier from the add-to-cart
// request parameters onto the cart item. An absent or empty parameter
// leaves the item untouched. The value is stored raw; sanitizing happens
// at display time.
func (i *Integration) CaptureListingID(_ context.Context, e *hooks.AddCartItemData) error {
	id := e.RequestParams[listingParam]
	if id == "" {
		return nil
	}
	e.Item.ListingID = id
	return nil
}

// AttachListingToLineItem carries a cart item's listing ID onto the order
// line item being created from it, and records the bidirectional
// order↔listing association:
//
//   - a "Listing" display entry on the line item,
//   - an appended listing_id value on the order (non-unique: one entry
//     per listing-carrying line item),
//   - an appended order_id value on the listing entity.
//
// Cart items without a listing ID are left alone.
func (i *Integration) AttachListingToLineItem(ctx context.Context, e *hooks.OrderLineItemCreated) error {
	listingID := e.CartItem.ListingID
	if listingID == "" {
		return nil
	}

	e.LineItem.AddMeta(listingMetaLabel, listingID)

	if err := i.meta.AppendValue(ctx, e.Order.ID, metadata.KeyListingID, listingID); err != nil {
		return errors.Wrap(err, "append listing id to order")
	}
	if err := i.meta.AppendValue(ctx, listingID, metadata.KeyOrderID, e.Order.ID); err != nil {
		return errors.Wrap(err, "append order id to listing")
	}
	return nil
}

// FormatListingRow appends a "Listing" display row for cart items that
// carry a listing ID: the raw value sanitized, the display value resolved
// to the listing's title. Items without a listing ID contribute nothing.
func (i *Integration) FormatListingRow(ctx context.Context, e *hooks.CartItemDisplayData) error {
	listingID := e.CartItem.ListingID
	if listingID == "" {
		return nil
	}

	display := listingID
	if l, err := i.listings.GetByID(ctx, listingID); err != nil {
		zctx.From(ctx).Debug("listing title lookup failed",
			zap.String("listing_id", listingID), zap.Error(err))
	} else {
		display = l.Title
	}

	e.Rows = append(e.Rows, hooks.DisplayRow{
		Label:   listingMetaLabel,
		Value:   sanitize(listingID),
		Display: display,
	})
	return nil
}
