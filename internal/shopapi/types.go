// Package shopapi is the HTTP client for the remote shop API: product
// catalog, barcode lookup, exchange-rate settings, authoritative
// currency conversion, and order creation. The shop API owns all
// persistent shop state; this gateway only consumes it.
package shopapi

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned for unknown product IDs and barcodes.
var ErrProductNotFound = errors.New("product not found")

// APIError is a non-2xx response from the shop API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shop api: status %d", e.Status)
	}
	return fmt.Sprintf("shop api: status %d: %s", e.Status, e.Message)
}

// Product is a catalog item as served by the shop API. Price is in the
// base currency.
type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	Barcode       string
	StockQuantity int
	IsActive      bool
}

// OrderItem is one submitted cart line. All amounts are in the base
// currency.
type OrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// OrderRequest is the order-creation payload. DiscountAmount is the
// absolute discount, not a percentage. Tax is deliberately absent: the
// client discount is advisory while tax is recomputed server-side as
// the authoritative value.
type OrderRequest struct {
	CustomerID     string
	CustomerName   string
	Items          []OrderItem
	DiscountAmount decimal.Decimal
	PaymentMethod  string
}

// OrderConfirmation is the created order record with the server's
// authoritative totals.
type OrderConfirmation struct {
	ID             string
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Status         string
	PaymentStatus  string
}
