package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/velvetree/listing-checkout/internal/domain/order"
	"github.com/velvetree/listing-checkout/internal/hooks"
	"github.com/velvetree/listing-checkout/internal/metadata"
)

// defaultThankYouText is the call-to-action appended to the order
// confirmation for listing purchases. %s receives the listing-creation
// URL.
const defaultThankYouText = `Head on over to your <a href="%s">My Account</a> dashboard and add your listing.`

// ComposeReceivedText appends the listing call-to-action to the order
// confirmation text when the order is a listing purchase in a terminal
// success state. Everything else leaves the text unchanged.
func (i *Integration) ComposeReceivedText(ctx context.Context, e *hooks.ThankYouText) error {
	isListing, err := i.meta.GetFlag(ctx, e.Order.ID, metadata.KeyListing)
	if err != nil || !isListing {
		return nil
	}
	if e.Order.Status != order.StatusComplete && e.Order.Status != order.StatusProcessing {
		return nil
	}

	tmpl := i.cfg.ThankYouAppendText
	if tmpl == "" {
		tmpl = defaultThankYouText
	}
	appended := tmpl
	if strings.Contains(tmpl, "%s") {
		appended = fmt.Sprintf(tmpl, i.ListingEndpointURL())
	}
	e.Text += " " + appended
	return nil
}

// ListingEndpointURL builds the listing-creation URL from the customer
// account base URL and the configured endpoint slug.
func (i *Integration) ListingEndpointURL() string {
	base := strings.TrimSuffix(i.cfg.AccountBaseURL, "/")
	return base + "/" + strings.Trim(i.cfg.EndpointSlug, "/")
}
