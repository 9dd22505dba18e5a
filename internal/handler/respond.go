package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/hbadiar77-commits/satina-mama/internal/cart"
	"github.com/hbadiar77-commits/satina-mama/internal/checkout"
	"github.com/hbadiar77-commits/satina-mama/internal/shopapi"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Code: code, Message: message})
}

// respondDomainError maps service errors onto HTTP statuses. Shop API
// failures surface as 502 so the register UI can distinguish "the shop
// rejected this" from "the gateway is broken".
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", "cart not found")
	case errors.Is(err, shopapi.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart has no items")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "cart is being submitted")
	case errors.Is(err, checkout.ErrInvalidPayment):
		respondError(w, http.StatusUnprocessableEntity, "invalid_payment", "unknown payment method")
	case errors.Is(err, cart.ErrInvalidDiscount):
		respondError(w, http.StatusUnprocessableEntity, "invalid_discount", "discount must be between 0 and 100")
	default:
		var apiErr *shopapi.APIError
		if errors.As(err, &apiErr) {
			zctx.From(r.Context()).Warn("Shop API rejected request",
				zap.Int("status", apiErr.Status),
				zap.String("message", apiErr.Message),
			)
			respondError(w, http.StatusBadGateway, "shop_api_error", apiErr.Message)
			return
		}
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return false
	}
	return true
}
