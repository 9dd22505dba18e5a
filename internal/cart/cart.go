// Package cart implements the point-of-sale cart: line items keyed by
// product, a percentage discount, an optional linked customer, and the
// derived order totals.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// taxRate is the fixed display tax applied after discount. The shop API
// recomputes tax authoritatively at order creation; this constant only
// drives the register preview.
var taxRate = decimal.RequireFromString("0.10")

var hundred = decimal.NewFromInt(100)

// ErrInvalidDiscount is returned when a discount percentage is outside
// the 0–100 range.
var ErrInvalidDiscount = errors.New("discount must be between 0 and 100")

// Product is the slice of a catalog product the cart needs. The unit
// price is captured at add time and never re-read, so later catalog
// price changes do not alter lines already in the cart.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Customer optionally links an order to a known customer.
type Customer struct {
	ID   string
	Name string
}

// Line is one product/quantity pairing. LineTotal is always
// UnitPrice × Quantity, maintained on every mutation.
type Line struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// Totals are derived from the cart on every read and never stored.
// All amounts are in the base currency.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// Cart holds the lines for one checkout session. Line order is
// insertion order; it matters only for display, never for totals.
//
// Cart is not safe for concurrent use; the checkout session serializes
// access.
type Cart struct {
	lines       []Line
	discountPct decimal.Decimal
	customer    *Customer
}

// New returns an empty cart with no discount and no customer.
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of p in the cart. An existing line for the same
// product is incremented instead of duplicated.
func (c *Cart) Add(p Product) {
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			c.lines[i].LineTotal = c.lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.lines[i].Quantity)))
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    1,
		LineTotal:   p.Price,
	})
}

// SetQuantity updates the quantity of the product's line. A quantity of
// zero or less removes the line entirely. Setting a quantity for a
// product not in the cart is a no-op.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			c.lines[i].LineTotal = c.lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
			return
		}
	}
}

// Remove drops the product's line. Absent products are a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart, resets the discount to zero, and unlinks the
// customer.
func (c *Cart) Clear() {
	c.lines = nil
	c.discountPct = decimal.Zero
	c.customer = nil
}

// SetDiscountPercent sets the cart-level discount percentage (0–100).
func (c *Cart) SetDiscountPercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	c.discountPct = pct
	return nil
}

// DiscountPercent returns the current discount percentage.
func (c *Cart) DiscountPercent() decimal.Decimal {
	return c.discountPct
}

// LinkCustomer attaches a customer to the cart.
func (c *Cart) LinkCustomer(cust Customer) {
	c.customer = &cust
}

// Customer returns the linked customer, or nil.
func (c *Cart) Customer() *Customer {
	return c.customer
}

// Lines returns a copy of the cart lines in display order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Totals computes the order totals from scratch: no caching, so partial
// updates can never leave stale derived values behind.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.LineTotal)
	}

	discount := subtotal.Mul(c.discountPct).Div(hundred)
	tax := subtotal.Sub(discount).Mul(taxRate)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          subtotal.Sub(discount).Add(tax),
	}
}
