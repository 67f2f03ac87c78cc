package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetree/listing-checkout/internal/domain/order"
	"github.com/velvetree/listing-checkout/internal/hooks"
	"github.com/velvetree/listing-checkout/internal/metadata"
)

func TestComposeReceivedText(t *testing.T) {
	tests := []struct {
		name       string
		flagged    bool
		status     order.Status
		appendText string
		base       string
		want       string
	}{
		{
			name:    "processing listing order gains the call to action",
			flagged: true,
			status:  order.StatusProcessing,
			base:    "Thanks!",
			want:    `Thanks! Head on over to your <a href="https://shop.test/my-account/add-listing">My Account</a> dashboard and add your listing.`,
		},
		{
			name:    "complete listing order gains the call to action",
			flagged: true,
			status:  order.StatusComplete,
			base:    "Thanks!",
			want:    `Thanks! Head on over to your <a href="https://shop.test/my-account/add-listing">My Account</a> dashboard and add your listing.`,
		},
		{
			name:    "pending listing order stays unchanged",
			flagged: true,
			status:  order.StatusPending,
			base:    "Thanks!",
			want:    "Thanks!",
		},
		{
			name:    "non-listing order stays unchanged",
			flagged: false,
			status:  order.StatusProcessing,
			base:    "Thanks!",
			want:    "Thanks!",
		},
		{
			name:       "configured copy with url placeholder",
			flagged:    true,
			status:     order.StatusProcessing,
			appendText: "Create your listing at %s now.",
			base:       "Thanks!",
			want:       "Thanks! Create your listing at https://shop.test/my-account/add-listing now.",
		},
		{
			name:       "configured copy without placeholder",
			flagged:    true,
			status:     order.StatusComplete,
			appendText: "Welcome aboard.",
			base:       "Thanks!",
			want:       "Thanks! Welcome aboard.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := newMemMetaRepo()
			if tt.flagged {
				require.NoError(t, meta.SetFlagOnce(context.Background(), "o1", metadata.KeyListing))
			}

			i := NewIntegration(IntegrationConfig{
				Enabled:            true,
				AccountBaseURL:     "https://shop.test/my-account",
				ThankYouAppendText: tt.appendText,
			}, meta, newMemCartStore(), &mockListingRepo{})

			e := hooks.ThankYouText{
				Text:  tt.base,
				Order: &order.Order{ID: "o1", Status: tt.status},
			}
			require.NoError(t, i.ComposeReceivedText(context.Background(), &e))
			assert.Equal(t, tt.want, e.Text)
		})
	}
}

func TestListingEndpointURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		slug string
		want string
	}{
		{
			name: "default slug",
			base: "https://shop.test/my-account",
			want: "https://shop.test/my-account/add-listing",
		},
		{
			name: "trailing slash on base",
			base: "https://shop.test/my-account/",
			slug: "new-listing",
			want: "https://shop.test/my-account/new-listing",
		},
		{
			name: "slug with surrounding slashes",
			base: "https://shop.test/my-account",
			slug: "/submit/",
			want: "https://shop.test/my-account/submit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := NewIntegration(IntegrationConfig{
				Enabled:        true,
				EndpointSlug:   tt.slug,
				AccountBaseURL: tt.base,
			}, newMemMetaRepo(), newMemCartStore(), &mockListingRepo{})
			assert.Equal(t, tt.want, i.ListingEndpointURL())
		})
	}
}
