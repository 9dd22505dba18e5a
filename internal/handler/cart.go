package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hbadiar77-commits/satina-mama/internal/cart"
	"github.com/hbadiar77-commits/satina-mama/internal/checkout"
)

type lineDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
	Display     string `json:"display"`
}

type customerDTO struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type totalsDTO struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discount_amount"`
	TaxAmount      string `json:"tax_amount"`
	Total          string `json:"total"`
}

// displayDTO carries the totals converted to the active display
// currency and formatted for the register screen. The base-currency
// totals in totalsDTO stay authoritative.
type displayDTO struct {
	Currency       string `json:"currency"`
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discount_amount"`
	TaxAmount      string `json:"tax_amount"`
	Total          string `json:"total"`
}

type cartDTO struct {
	ID              string       `json:"id"`
	Lines           []lineDTO    `json:"lines"`
	DiscountPercent string       `json:"discount_percent"`
	Customer        *customerDTO `json:"customer,omitempty"`
	Totals          totalsDTO    `json:"totals"`
	Display         displayDTO   `json:"display"`
	Submitting      bool         `json:"submitting"`
}

func (h *Handler) snapshotToDTO(snap *checkout.Snapshot) cartDTO {
	lines := make([]lineDTO, len(snap.Lines))
	for i, l := range snap.Lines {
		lines[i] = lineDTO{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.String(),
			LineTotal:   l.LineTotal.String(),
			Display:     h.engine.FormatActive(l.LineTotal),
		}
	}

	dto := cartDTO{
		ID:              snap.ID,
		Lines:           lines,
		DiscountPercent: snap.DiscountPercent.String(),
		Totals: totalsDTO{
			Subtotal:       snap.Totals.Subtotal.String(),
			DiscountAmount: snap.Totals.DiscountAmount.String(),
			TaxAmount:      snap.Totals.TaxAmount.String(),
			Total:          snap.Totals.Total.String(),
		},
		Display: displayDTO{
			Currency:       h.engine.Active().Code,
			Subtotal:       h.engine.FormatActive(snap.Totals.Subtotal),
			DiscountAmount: h.engine.FormatActive(snap.Totals.DiscountAmount),
			TaxAmount:      h.engine.FormatActive(snap.Totals.TaxAmount),
			Total:          h.engine.FormatActive(snap.Totals.Total),
		},
		Submitting: snap.Submitting,
	}
	if snap.Customer != nil {
		dto.Customer = &customerDTO{ID: snap.Customer.ID, Name: snap.Customer.Name}
	}
	return dto
}

func (h *Handler) respondSnapshot(w http.ResponseWriter, r *http.Request, status int, id string) {
	snap, err := h.checkout.Snapshot(id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, status, h.snapshotToDTO(snap))
}

func (h *Handler) openCart(w http.ResponseWriter, r *http.Request) {
	h.respondSnapshot(w, r, http.StatusCreated, h.checkout.Open())
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.respondSnapshot(w, r, http.StatusOK, cartID(r))
}

func (h *Handler) closeCart(w http.ResponseWriter, r *http.Request) {
	if err := h.checkout.Close(cartID(r)); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Barcode   string `json:"barcode"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := cartID(r)
	var err error
	switch {
	case req.ProductID != "" && req.Barcode != "":
		respondError(w, http.StatusBadRequest, "invalid_body", "provide either product_id or barcode, not both")
		return
	case req.ProductID != "":
		err = h.checkout.AddProduct(r.Context(), id, req.ProductID)
	case req.Barcode != "":
		err = h.checkout.AddBarcode(r.Context(), id, req.Barcode)
	default:
		respondError(w, http.StatusBadRequest, "invalid_body", "product_id or barcode is required")
		return
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, http.StatusOK, id)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := cartID(r)
	if err := h.checkout.SetQuantity(id, chi.URLParam(r, "productID"), req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, http.StatusOK, id)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id := cartID(r)
	if err := h.checkout.RemoveItem(id, chi.URLParam(r, "productID")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, http.StatusOK, id)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id := cartID(r)
	if err := h.checkout.Clear(id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, http.StatusOK, id)
}

type setDiscountRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

func (h *Handler) setDiscount(w http.ResponseWriter, r *http.Request) {
	var req setDiscountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := cartID(r)
	if err := h.checkout.SetDiscount(id, req.Percent); err != nil {
		respondDomainError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, http.StatusOK, id)
}

func (h *Handler) linkCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerDTO
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "invalid_customer", "customer name is required")
		return
	}
	id := cartID(r)
	if err := h.checkout.LinkCustomer(id, cart.Customer{ID: req.ID, Name: req.Name}); err != nil {
		respondDomainError(w, r, err)
		return
	}
	h.respondSnapshot(w, r, http.StatusOK, id)
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.checkout.Checkout(r.Context(), cartID(r), req.PaymentMethod)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.receiptToDTO(receipt))
}
