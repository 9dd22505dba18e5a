package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/hbadiar77-commits/satina-mama/internal/checkout"
)

type receiptItemDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
}

type receiptDTO struct {
	ID             string           `json:"id"`
	OrderID        string           `json:"order_id"`
	CustomerName   string           `json:"customer_name,omitempty"`
	PaymentMethod  string           `json:"payment_method"`
	Items          []receiptItemDTO `json:"items"`
	Subtotal       string           `json:"subtotal"`
	DiscountAmount string           `json:"discount_amount"`
	TaxAmount      string           `json:"tax_amount"`
	TotalAmount    string           `json:"total_amount"`
	TotalDisplay   string           `json:"total_display"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (h *Handler) receiptToDTO(rc *checkout.Receipt) receiptDTO {
	items := make([]receiptItemDTO, len(rc.Items))
	for i, it := range rc.Items {
		items[i] = receiptItemDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.String(),
			TotalPrice:  it.TotalPrice.String(),
		}
	}
	return receiptDTO{
		ID:             rc.ID,
		OrderID:        rc.OrderID,
		CustomerName:   rc.CustomerName,
		PaymentMethod:  rc.PaymentMethod,
		Items:          items,
		Subtotal:       rc.Subtotal.String(),
		DiscountAmount: rc.DiscountAmount.String(),
		TaxAmount:      rc.TaxAmount.String(),
		TotalAmount:    rc.TotalAmount.String(),
		TotalDisplay:   h.engine.FormatActive(rc.TotalAmount),
		CreatedAt:      rc.CreatedAt,
	}
}

func (h *Handler) listReceipts(w http.ResponseWriter, r *http.Request) {
	if h.receipts == nil {
		respondJSON(w, http.StatusOK, []receiptDTO{})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	receipts, err := h.receipts.Recent(r.Context(), limit)
	if err != nil {
		zctx.From(r.Context()).Error("Listing receipts failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	out := make([]receiptDTO, len(receipts))
	for i := range receipts {
		out[i] = h.receiptToDTO(&receipts[i])
	}
	respondJSON(w, http.StatusOK, out)
}
