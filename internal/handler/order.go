package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/velvetree/listing-checkout/internal/checkout"
	"github.com/velvetree/listing-checkout/internal/storage/postgres"
)

// defaultReceivedText is the base confirmation sentence; listeners may
// append to it.
const defaultReceivedText = "Thank you. Your order has been received."

type checkoutRequest struct {
	Posted map[string]string `json:"posted,omitempty"`
}

type checkoutResponse struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	Total          string `json:"total"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list products", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	type productResponse struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Price     string `json:"price"`
		Recurring bool   `json:"recurring,omitempty"`
	}
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = productResponse{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price.StringFixed(2),
			Recurring: p.Recurring,
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

// Checkout handles POST /api/carts/{cartID}/checkout: turns the cart into
// an order (and possibly a subscription) and clears the cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartID")

	var req checkoutRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Checkout(r.Context(), checkout.CheckoutRequest{
		CartID: cartID,
		Posted: req.Posted,
	})
	if err != nil {
		h.mapCheckoutError(w, r, err)
		return
	}

	resp := checkoutResponse{
		OrderID: result.Order.ID,
		Status:  string(result.Order.Status),
		Total:   result.Order.Total.StringFixed(2),
	}
	if result.Subscription != nil {
		resp.SubscriptionID = result.Subscription.ID
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

// OrderReceived handles GET /api/orders/{orderID}/received: the
// confirmation text for the order, with the ThankYouText listeners
// applied. A text query parameter overrides the base sentence.
func (h *Handler) OrderReceived(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderID")

	base := r.URL.Query().Get("text")
	if base == "" {
		base = defaultReceivedText
	}

	text, err := h.service.ReceivedText(r.Context(), orderID, base)
	if err != nil {
		if errors.Is(err, postgres.ErrOrderNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("order received text", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"text": text})
}

func (h *Handler) mapCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		var pnf *checkout.ProductNotFoundError
		if errors.As(err, &pnf) {
			writeError(w, r, http.StatusUnprocessableEntity, pnf.Error())
			return
		}
		zctx.From(r.Context()).Error("checkout", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
