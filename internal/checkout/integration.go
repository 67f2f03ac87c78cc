// Package checkout links directory listing purchases into the e-commerce
// checkout pipeline: cart exclusivity for listing products, listing
// identity propagation from request to cart to order to subscription,
// listing-purchase classification of orders and subscriptions, and the
// post-purchase call-to-action.
package checkout

import (
	"strings"

	"github.com/velvetree/listing-checkout/internal/domain/cart"
	"github.com/velvetree/listing-checkout/internal/domain/listing"
	"github.com/velvetree/listing-checkout/internal/hooks"
	"github.com/velvetree/listing-checkout/internal/metadata"
)

// listingParam is the add-to-cart query parameter carrying the listing ID.
const listingParam = "listing_id"

// listingMetaLabel is the human-facing label for line item and cart
// display entries.
const listingMetaLabel = "Listing"

// IntegrationConfig holds the tunable parts of the listing integration.
type IntegrationConfig struct {
	// Enabled gates hook registration; a disabled integration attaches
	// no listeners and the checkout pipeline behaves as plain commerce.
	Enabled bool
	// EndpointSlug is the account-area path for creating a listing.
	EndpointSlug string
	// AccountBaseURL is the customer account base the endpoint slug is
	// joined to.
	AccountBaseURL string
	// ThankYouAppendText overrides the default call-to-action sentence.
	// A %s placeholder receives the listing-creation URL.
	ThankYouAppendText string
}

// Integration wires the listing purchase behaviour into the checkout
// lifecycle. Construct it once in the composition root and call Register
// with the hook registry; there is no hidden global instance.
type Integration struct {
	cfg      IntegrationConfig
	meta     metadata.Repository
	carts    cart.Store
	listings listing.Repository
}

// NewIntegration creates the listing checkout integration with its
// collaborators.
func NewIntegration(
	cfg IntegrationConfig,
	meta metadata.Repository,
	carts cart.Store,
	listings listing.Repository,
) *Integration {
	if cfg.EndpointSlug == "" {
		cfg.EndpointSlug = "add-listing"
	}
	return &Integration{
		cfg:      cfg,
		meta:     meta,
		carts:    carts,
		listings: listings,
	}
}

// Register attaches the integration's listeners to the lifecycle events.
// A disabled integration registers nothing.
func (i *Integration) Register(reg *hooks.Registry) {
	if !i.cfg.Enabled {
		return
	}
	reg.AddToCartValidation.Attach(i.GuardAddToCart)
	reg.AddCartItemData.Attach(i.CaptureListingID)
	reg.OrderLineItemCreated.Attach(i.AttachListingToLineItem)
	reg.OrderProcessed.Attach(i.ClassifyOrder)
	reg.SubscriptionCreated.Attach(i.ClassifySubscription)
	reg.ThankYouText.Attach(i.ComposeReceivedText)
	reg.CartItemDisplayData.Attach(i.FormatListingRow)
}

// sanitize strips control characters and surrounding whitespace from a
// request-supplied value before it is echoed back in display data.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
