package hooks

import (
	"github.com/velvetree/listing-checkout/internal/domain/cart"
	"github.com/velvetree/listing-checkout/internal/domain/order"
	"github.com/velvetree/listing-checkout/internal/domain/subscription"
)

// AddToCartValidation runs before an item is added to a cart. Listeners
// may flip Allowed, empty the cart through their own collaborators, and
// raise RedirectRequested for the calling handler to act on.
type AddToCartValidation struct {
	Allowed     bool
	CartID      string
	ProductID   string
	Quantity    int
	VariationID string
	Item        *cart.Item

	// RedirectRequested asks the caller to send the customer to the
	// listing checkout flow instead of the regular cart page.
	RedirectRequested bool
}

// AddCartItemData runs while the cart item is being built, before it is
// stored. Listeners augment Item with request-scoped data.
type AddCartItemData struct {
	Item        *cart.Item
	ProductID   string
	VariationID string

	// RequestParams are the query parameters of the add-to-cart request.
	RequestParams map[string]string
}

// OrderLineItemCreated runs once per line item while an order is being
// assembled from cart contents, before the order is persisted.
type OrderLineItemCreated struct {
	LineItem    *order.LineItem
	CartItemKey string
	CartItem    cart.Item
	Order       *order.Order
}

// OrderProcessed runs after checkout has persisted the order.
// WasListingOrder is set by listeners and read by later dispatch sites.
type OrderProcessed struct {
	OrderID string
	Posted  map[string]string
	Order   *order.Order

	WasListingOrder bool
}

// SubscriptionCreated runs after a subscription has been derived from an
// order at checkout.
type SubscriptionCreated struct {
	Subscription *subscription.Subscription
	Posted       map[string]string
	Order        *order.Order
	CartItems    []cart.Item
}

// ThankYouText runs when the order confirmation page is rendered.
// Listeners rewrite Text in place.
type ThankYouText struct {
	Text  string
	Order *order.Order
}

// DisplayRow is one labeled line shown under a cart item in the cart
// summary.
type DisplayRow struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Display string `json:"display"`
}

// CartItemDisplayData runs per cart item when the cart summary is
// rendered. Listeners append rows for their own item data.
type CartItemDisplayData struct {
	Rows     []DisplayRow
	CartItem cart.Item
}

// Registry holds every lifecycle event the checkout pipeline dispatches,
// one typed hook per event. The composition root constructs a single
// Registry and hands it to both the dispatch sites and the integrations
// that listen.
type Registry struct {
	AddToCartValidation  *Hook[AddToCartValidation]
	AddCartItemData      *Hook[AddCartItemData]
	OrderLineItemCreated *Hook[OrderLineItemCreated]
	OrderProcessed       *Hook[OrderProcessed]
	SubscriptionCreated  *Hook[SubscriptionCreated]
	ThankYouText         *Hook[ThankYouText]
	CartItemDisplayData  *Hook[CartItemDisplayData]
}

// NewRegistry creates a Registry with all hooks named and empty.
func NewRegistry() *Registry {
	return &Registry{
		AddToCartValidation:  NewHook[AddToCartValidation]("cart.add_to_cart_validation"),
		AddCartItemData:      NewHook[AddCartItemData]("cart.add_cart_item_data"),
		OrderLineItemCreated: NewHook[OrderLineItemCreated]("checkout.order_line_item_created"),
		OrderProcessed:       NewHook[OrderProcessed]("checkout.order_processed"),
		SubscriptionCreated:  NewHook[SubscriptionCreated]("checkout.subscription_created"),
		ThankYouText:         NewHook[ThankYouText]("render.thank_you_text"),
		CartItemDisplayData:  NewHook[CartItemDisplayData]("render.cart_item_display_data"),
	}
}
