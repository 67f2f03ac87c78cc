package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetree/listing-checkout/internal/domain/cart"
	"github.com/velvetree/listing-checkout/internal/domain/listing"
	"github.com/velvetree/listing-checkout/internal/domain/order"
	"github.com/velvetree/listing-checkout/internal/hooks"
	"github.com/velvetree/listing-checkout/internal/metadata"
)

func TestCaptureListingID(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{
			name:   "listing id copied onto the cart item",
			params: map[string]string{"listing_id": "listing-7"},
			want:   "listing-7",
		},
		{
			name:   "absent parameter leaves the item unchanged",
			params: map[string]string{"utm_source": "mail"},
			want:   "",
		},
		{
			name:   "empty parameter leaves the item unchanged",
			params: map[string]string{"listing_id": ""},
			want:   "",
		},
		{
			name: "nil params",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := newTestIntegration(newMemMetaRepo(), newMemCartStore(), nil)
			item := cart.Item{Key: "k1", ProductID: "p1", Quantity: 1}
			e := hooks.AddCartItemData{
				Item:          &item,
				ProductID:     "p1",
				RequestParams: tt.params,
			}
			require.NoError(t, i.CaptureListingID(context.Background(), &e))
			assert.Equal(t, tt.want, item.ListingID)
		})
	}
}

func TestAttachListingToLineItem(t *testing.T) {
	t.Run("no listing id is a no-op", func(t *testing.T) {
		meta := newMemMetaRepo()
		i := newTestIntegration(meta, newMemCartStore(), nil)

		li := order.LineItem{ID: "li1", ProductID: "p1", Quantity: 1}
		o := &order.Order{ID: "o1"}
		e := hooks.OrderLineItemCreated{
			LineItem:    &li,
			CartItemKey: "k1",
			CartItem:    cart.Item{Key: "k1", ProductID: "p1", Quantity: 1},
			Order:       o,
		}
		require.NoError(t, i.AttachListingToLineItem(context.Background(), &e))

		assert.Empty(t, li.Meta)
		vals, err := meta.Values(context.Background(), "o1", metadata.KeyListingID)
		require.NoError(t, err)
		assert.Empty(t, vals)
	})

	t.Run("round trip from cart item to order and listing", func(t *testing.T) {
		meta := newMemMetaRepo()
		i := newTestIntegration(meta, newMemCartStore(), nil)

		li := order.LineItem{ID: "li1", ProductID: "p1", Quantity: 1}
		o := &order.Order{ID: "o1"}
		e := hooks.OrderLineItemCreated{
			LineItem:    &li,
			CartItemKey: "k1",
			CartItem:    cart.Item{Key: "k1", ProductID: "p1", Quantity: 1, ListingID: "listing-9"},
			Order:       o,
		}
		require.NoError(t, i.AttachListingToLineItem(context.Background(), &e))

		// Display meta on the line item.
		require.Len(t, li.Meta, 1)
		assert.Equal(t, order.MetaEntry{Label: "Listing", Value: "listing-9"}, li.Meta[0])

		// Order gains the listing id.
		vals, err := meta.Values(context.Background(), "o1", metadata.KeyListingID)
		require.NoError(t, err)
		assert.Equal(t, []string{"listing-9"}, vals)

		// Listing gains the order back-reference.
		backRefs, err := meta.Values(context.Background(), "listing-9", metadata.KeyOrderID)
		require.NoError(t, err)
		assert.Equal(t, []string{"o1"}, backRefs)
	})

	t.Run("order listing_id accumulates per line item", func(t *testing.T) {
		meta := newMemMetaRepo()
		i := newTestIntegration(meta, newMemCartStore(), nil)
		o := &order.Order{ID: "o1"}

		for _, listingID := range []string{"listing-1", "listing-2", "listing-1"} {
			li := order.LineItem{ID: "li-" + listingID, ProductID: "p1", Quantity: 1}
			e := hooks.OrderLineItemCreated{
				LineItem: &li,
				CartItem: cart.Item{ProductID: "p1", Quantity: 1, ListingID: listingID},
				Order:    o,
			}
			require.NoError(t, i.AttachListingToLineItem(context.Background(), &e))
		}

		// Append-only: duplicates are kept, nothing is overwritten.
		vals, err := meta.Values(context.Background(), "o1", metadata.KeyListingID)
		require.NoError(t, err)
		assert.Equal(t, []string{"listing-1", "listing-2", "listing-1"}, vals)
	})
}

func TestFormatListingRow(t *testing.T) {
	listings := &mockListingRepo{byID: map[string]*listing.Listing{
		"listing-3": {ID: "listing-3", Title: "Blue Café"},
	}}

	tests := []struct {
		name string
		item cart.Item
		want []hooks.DisplayRow
	}{
		{
			name: "no listing id appends nothing",
			item: cart.Item{Key: "k1", ProductID: "p1", Quantity: 1},
			want: nil,
		},
		{
			name: "listing id appends a labeled row with the title",
			item: cart.Item{Key: "k1", ProductID: "p1", Quantity: 1, ListingID: "listing-3"},
			want: []hooks.DisplayRow{
				{Label: "Listing", Value: "listing-3", Display: "Blue Café"},
			},
		},
		{
			name: "unknown listing falls back to the raw id",
			item: cart.Item{Key: "k1", ProductID: "p1", Quantity: 1, ListingID: "listing-gone"},
			want: []hooks.DisplayRow{
				{Label: "Listing", Value: "listing-gone", Display: "listing-gone"},
			},
		},
		{
			name: "raw value is sanitized for display data",
			item: cart.Item{Key: "k1", ProductID: "p1", Quantity: 1, ListingID: " listing-3\n"},
			want: []hooks.DisplayRow{
				{Label: "Listing", Value: "listing-3", Display: " listing-3\n"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := newTestIntegration(newMemMetaRepo(), newMemCartStore(), listings)
			e := hooks.CartItemDisplayData{CartItem: tt.item}
			require.NoError(t, i.FormatListingRow(context.Background(), &e))
			assert.Equal(t, tt.want, e.Rows)
		})
	}
}
