package checkout

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velvetree/listing-checkout/internal/domain/cart"
	"github.com/velvetree/listing-checkout/internal/domain/order"
	"github.com/velvetree/listing-checkout/internal/domain/product"
	"github.com/velvetree/listing-checkout/internal/domain/subscription"
	"github.com/velvetree/listing-checkout/internal/hooks"
)

// Sentinel errors for cart and checkout validation.
var (
	ErrEmptyCart       = fmt.Errorf("cart is empty")
	ErrInvalidQuantity = fmt.Errorf("quantity must be greater than 0")
	ErrNotAllowed      = fmt.Errorf("add to cart rejected")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Service owns the checkout pipeline: it builds carts and orders and
// dispatches the lifecycle events that integrations listen on. It has no
// listing-specific behaviour of its own; everything listing-related
// arrives through the hook registry.
type Service struct {
	hooks    *hooks.Registry
	carts    cart.Store
	products product.Repository
	orders   order.Repository
	subs     subscription.Repository
}

// NewService creates the checkout Service with its collaborators.
func NewService(
	reg *hooks.Registry,
	carts cart.Store,
	products product.Repository,
	orders order.Repository,
	subs subscription.Repository,
) *Service {
	return &Service{
		hooks:    reg,
		carts:    carts,
		products: products,
		orders:   orders,
		subs:     subs,
	}
}

// AddToCartRequest holds the input for adding a product to a cart.
// Params carries the raw query parameters of the inbound request; the
// AddCartItemData listeners read them.
type AddToCartRequest struct {
	CartID      string
	ProductID   string
	VariationID string
	Quantity    int
	Params      map[string]string
}

// AddToCartResult reports the stored item and whether a listener asked to
// redirect the customer.
type AddToCartResult struct {
	Item     cart.Item
	Redirect bool
}

// AddToCart validates the product, runs the AddToCartValidation and
// AddCartItemData events, and stores the resulting item.
func (s *Service) AddToCart(ctx context.Context, req AddToCartRequest) (*AddToCartResult, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: req.ProductID}
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	v := hooks.AddToCartValidation{
		Allowed:     true,
		CartID:      req.CartID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		VariationID: req.VariationID,
	}
	if err := s.hooks.AddToCartValidation.Dispatch(ctx, &v); err != nil {
		return nil, fmt.Errorf("add to cart validation: %w", err)
	}
	if !v.Allowed {
		return nil, ErrNotAllowed
	}

	item := cart.Item{
		Key:         uuid.New().String(),
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Quantity:    req.Quantity,
	}
	d := hooks.AddCartItemData{
		Item:          &item,
		ProductID:     req.ProductID,
		VariationID:   req.VariationID,
		RequestParams: req.Params,
	}
	if err := s.hooks.AddCartItemData.Dispatch(ctx, &d); err != nil {
		return nil, fmt.Errorf("add cart item data: %w", err)
	}

	if err := s.carts.Add(ctx, req.CartID, item); err != nil {
		return nil, fmt.Errorf("store cart item: %w", err)
	}

	return &AddToCartResult{Item: item, Redirect: v.RedirectRequested}, nil
}

// ItemDisplay pairs a cart item with the display rows listeners produced
// for it. The rendering layer consumes this as-is.
type ItemDisplay struct {
	Item cart.Item          `json:"item"`
	Rows []hooks.DisplayRow `json:"rows,omitempty"`
}

// DisplayRows runs the CartItemDisplayData event for every item in the
// cart and returns the assembled display data.
func (s *Service) DisplayRows(ctx context.Context, cartID string) ([]ItemDisplay, error) {
	items, err := s.carts.Items(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	out := make([]ItemDisplay, 0, len(items))
	for _, it := range items {
		e := hooks.CartItemDisplayData{CartItem: it}
		if err := s.hooks.CartItemDisplayData.Dispatch(ctx, &e); err != nil {
			return nil, fmt.Errorf("cart item display data: %w", err)
		}
		out = append(out, ItemDisplay{Item: it, Rows: e.Rows})
	}
	return out, nil
}

// CheckoutRequest holds the input for completing a checkout.
type CheckoutRequest struct {
	CartID string
	Posted map[string]string
}

// CheckoutResult holds the persisted order and, for recurring products,
// the subscription derived from it.
type CheckoutResult struct {
	Order        *order.Order
	Subscription *subscription.Subscription
}

// Checkout builds an order from the cart contents, dispatching
// OrderLineItemCreated per line item before persisting, OrderProcessed
// after, and SubscriptionCreated when a recurring product derives a
// subscription. The cart is cleared on success.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	items, err := s.carts.Items(ctx, req.CartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// Batch fetch all products once.
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	o := &order.Order{
		ID:     uuid.New().String(),
		Status: order.StatusProcessing,
	}

	total := decimal.Zero
	recurring := false
	for _, it := range items {
		p, ok := productMap[it.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: it.ProductID}
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		if p.Recurring {
			recurring = true
		}
		o.LineItems = append(o.LineItems, order.LineItem{
			ID:          uuid.New().String(),
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Quantity:    it.Quantity,
		})
	}
	o.Total = total.Round(2)

	// Line item hooks run before the order is persisted, matching the
	// order in which the host lifecycle fires them.
	for idx, it := range items {
		e := hooks.OrderLineItemCreated{
			LineItem:    &o.LineItems[idx],
			CartItemKey: it.Key,
			CartItem:    it,
			Order:       o,
		}
		if err := s.hooks.OrderLineItemCreated.Dispatch(ctx, &e); err != nil {
			return nil, fmt.Errorf("order line item created: %w", err)
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	processed := hooks.OrderProcessed{
		OrderID: o.ID,
		Posted:  req.Posted,
		Order:   o,
	}
	if err := s.hooks.OrderProcessed.Dispatch(ctx, &processed); err != nil {
		return nil, fmt.Errorf("order processed: %w", err)
	}

	result := &CheckoutResult{Order: o}
	if recurring {
		sub := &subscription.Subscription{
			ID:      uuid.New().String(),
			OrderID: o.ID,
			Status:  "active",
		}
		if err := s.subs.Create(ctx, sub); err != nil {
			return nil, fmt.Errorf("create subscription: %w", err)
		}
		e := hooks.SubscriptionCreated{
			Subscription: sub,
			Posted:       req.Posted,
			Order:        o,
			CartItems:    items,
		}
		if err := s.hooks.SubscriptionCreated.Dispatch(ctx, &e); err != nil {
			return nil, fmt.Errorf("subscription created: %w", err)
		}
		result.Subscription = sub
	}

	if err := s.carts.Clear(ctx, req.CartID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	return result, nil
}

// ReceivedText renders the order confirmation text for an order,
// running the ThankYouText event over the base text.
func (s *Service) ReceivedText(ctx context.Context, orderID, base string) (string, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("get order: %w", err)
	}
	e := hooks.ThankYouText{Text: base, Order: o}
	if err := s.hooks.ThankYouText.Dispatch(ctx, &e); err != nil {
		return "", fmt.Errorf("thank you text: %w", err)
	}
	return e.Text, nil
}
