// Package handler exposes the checkout pipeline over HTTP. Handlers stay
// thin: decode the request, delegate to the checkout service, map domain
// errors to status codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/velvetree/listing-checkout/internal/checkout"
	"github.com/velvetree/listing-checkout/internal/domain/product"
)

// Handler serves the cart, checkout and order confirmation endpoints.
type Handler struct {
	service  *checkout.Service
	products product.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(service *checkout.Service, products product.Repository) *Handler {
	return &Handler{
		service:  service,
		products: products,
	}
}

// Register attaches all routes to the mux. Routes are method-scoped
// patterns; path parameters are read with PathValue.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/carts/{cartID}/items", h.AddToCart)
	mux.HandleFunc("GET /api/carts/{cartID}", h.ShowCart)
	mux.HandleFunc("POST /api/carts/{cartID}/checkout", h.Checkout)
	mux.HandleFunc("GET /api/orders/{orderID}/received", h.OrderReceived)
}

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Code: status, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
