// Package checkout owns the cart sessions of a register: opening and
// clearing carts, serializing their mutations, and submitting finished
// carts to the shop API as orders.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/hbadiar77-commits/satina-mama/internal/cart"
	"github.com/hbadiar77-commits/satina-mama/internal/shopapi"
)

// Sentinel errors for cart operations.
var (
	ErrCartNotFound       = errors.New("cart not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmissionInFlight = errors.New("cart submission already in progress")
	ErrInvalidPayment     = errors.New("unknown payment method")
)

// Payment methods accepted by the shop API.
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentMobile = "mobile"
)

func validPayment(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	}
	return false
}

// Catalog resolves products from the shop API.
type Catalog interface {
	ProductByID(ctx context.Context, id string) (*shopapi.Product, error)
	ProductByBarcode(ctx context.Context, code string) (*shopapi.Product, error)
}

// OrderGateway submits finished carts to the shop API.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req shopapi.OrderRequest) (*shopapi.OrderConfirmation, error)
}

// ReceiptRecorder journals successfully submitted orders locally so a
// register can reprint them.
type ReceiptRecorder interface {
	Save(ctx context.Context, r *Receipt) error
}

// BarcodeIndex rules out scans that cannot be known barcodes.
type BarcodeIndex interface {
	MightContain(code string) bool
}

// Receipt is the local record of a submitted order. The amounts are the
// shop API's authoritative totals from the order-creation response, not
// the register's preview.
type Receipt struct {
	ID             string
	OrderID        string
	CustomerName   string
	PaymentMethod  string
	Items          []shopapi.OrderItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	CreatedAt      time.Time
}

// Snapshot is a point-in-time view of one cart session.
type Snapshot struct {
	ID              string
	Lines           []cart.Line
	DiscountPercent decimal.Decimal
	Customer        *cart.Customer
	Totals          cart.Totals
	Submitting      bool
}

// session pairs a cart with the mutex that serializes all access to it.
// The original register UI is single-threaded; behind HTTP the mutex
// provides the same one-mutation-at-a-time guarantee per cart.
type session struct {
	id   string
	mu   sync.Mutex
	cart *cart.Cart

	// submitting blocks overlapping checkout attempts while a
	// submission is on the wire.
	submitting bool
}
