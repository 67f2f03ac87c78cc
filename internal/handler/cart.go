package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/velvetree/listing-checkout/internal/checkout"
)

type addToCartRequest struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

type addToCartResponse struct {
	Item     any  `json:"item"`
	Redirect bool `json:"redirect,omitempty"`
}

// AddToCart handles POST /api/carts/{cartID}/items. Query parameters of
// the request (notably listing_id) are forwarded to the AddCartItemData
// listeners untouched.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartID")

	var req addToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := make(map[string]string)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}

	result, err := h.service.AddToCart(r.Context(), checkout.AddToCartRequest{
		CartID:      cartID,
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Quantity:    req.Quantity,
		Params:      params,
	})
	if err != nil {
		h.mapCartError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, addToCartResponse{
		Item:     result.Item,
		Redirect: result.Redirect,
	})
}

// ShowCart handles GET /api/carts/{cartID}: the cart contents plus the
// display rows the CartItemDisplayData listeners produced.
func (h *Handler) ShowCart(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartID")

	items, err := h.service.DisplayRows(r.Context(), cartID)
	if err != nil {
		zctx.From(r.Context()).Error("show cart", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) mapCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrInvalidQuantity):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, checkout.ErrNotAllowed):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		var pnf *checkout.ProductNotFoundError
		if errors.As(err, &pnf) {
			writeError(w, r, http.StatusUnprocessableEntity, pnf.Error())
			return
		}
		zctx.From(r.Context()).Error("add to cart", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
