package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hbadiar77-commits/satina-mama/internal/cart"
	"github.com/hbadiar77-commits/satina-mama/internal/shopapi"
)

// Mock implementations.

type mockCatalog struct {
	byID      map[string]*shopapi.Product
	byBarcode map[string]*shopapi.Product
	calls     int
}

func (m *mockCatalog) ProductByID(_ context.Context, id string) (*shopapi.Product, error) {
	m.calls++
	p, ok := m.byID[id]
	if !ok {
		return nil, shopapi.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalog) ProductByBarcode(_ context.Context, code string) (*shopapi.Product, error) {
	m.calls++
	p, ok := m.byBarcode[code]
	if !ok {
		return nil, shopapi.ErrProductNotFound
	}
	return p, nil
}

type mockGateway struct {
	conf    *shopapi.OrderConfirmation
	err     error
	lastReq *shopapi.OrderRequest
	calls   int
}

func (m *mockGateway) CreateOrder(_ context.Context, req shopapi.OrderRequest) (*shopapi.OrderConfirmation, error) {
	m.calls++
	m.lastReq = &req
	if m.err != nil {
		return nil, m.err
	}
	return m.conf, nil
}

type mockRecorder struct {
	saved []*Receipt
	err   error
}

func (m *mockRecorder) Save(_ context.Context, r *Receipt) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, r)
	return nil
}

type mockIndex struct {
	known map[string]bool
}

func (m *mockIndex) MightContain(code string) bool {
	return m.known[code]
}

// Helpers.

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct(id, name, price string) *shopapi.Product {
	return &shopapi.Product{ID: id, Name: name, Price: dec(price), IsActive: true}
}

func newTestService(catalog *mockCatalog, gw *mockGateway, rec ReceiptRecorder, idx BarcodeIndex) *Service {
	if catalog == nil {
		catalog = &mockCatalog{}
	}
	if gw == nil {
		gw = &mockGateway{}
	}
	return NewService(zap.NewNop(), catalog, gw, rec, idx)
}

// Tests.

func TestAddProduct(t *testing.T) {
	catalog := &mockCatalog{byID: map[string]*shopapi.Product{
		"p1": testProduct("p1", "Sucre 1kg", "1000"),
	}}
	svc := newTestService(catalog, nil, nil, nil)
	id := svc.Open()

	require.NoError(t, svc.AddProduct(context.Background(), id, "p1"))
	require.NoError(t, svc.AddProduct(context.Background(), id, "p1"))

	snap, err := svc.Snapshot(id)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.True(t, dec("2000").Equal(snap.Totals.Subtotal))
}

func TestAddProduct_UnknownProduct(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)
	id := svc.Open()

	err := svc.AddProduct(context.Background(), id, "ghost")
	require.ErrorIs(t, err, shopapi.ErrProductNotFound)

	snap, err := svc.Snapshot(id)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
}

func TestAddProduct_UnknownCart(t *testing.T) {
	catalog := &mockCatalog{byID: map[string]*shopapi.Product{
		"p1": testProduct("p1", "Sucre 1kg", "1000"),
	}}
	svc := newTestService(catalog, nil, nil, nil)

	err := svc.AddProduct(context.Background(), "no-such-cart", "p1")
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestAddBarcode(t *testing.T) {
	catalog := &mockCatalog{byBarcode: map[string]*shopapi.Product{
		"6191234567890": testProduct("p7", "Huile 1L", "25000"),
	}}
	svc := newTestService(catalog, nil, nil, nil)
	id := svc.Open()

	require.NoError(t, svc.AddBarcode(context.Background(), id, "6191234567890"))

	snap, err := svc.Snapshot(id)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "p7", snap.Lines[0].ProductID)
}

func TestAddBarcode_IndexShortCircuit(t *testing.T) {
	catalog := &mockCatalog{byBarcode: map[string]*shopapi.Product{
		"6191234567890": testProduct("p7", "Huile 1L", "25000"),
	}}
	idx := &mockIndex{known: map[string]bool{"6191234567890": true}}
	svc := newTestService(catalog, nil, nil, idx)
	id := svc.Open()

	err := svc.AddBarcode(context.Background(), id, "0000000000000")
	require.ErrorIs(t, err, shopapi.ErrProductNotFound)
	assert.Zero(t, catalog.calls, "ruled-out scan must not reach the shop API")

	require.NoError(t, svc.AddBarcode(context.Background(), id, "6191234567890"))
	assert.Equal(t, 1, catalog.calls)
}

func TestCheckout_Success(t *testing.T) {
	catalog := &mockCatalog{byID: map[string]*shopapi.Product{
		"p1": testProduct("p1", "Sucre 1kg", "1000"),
		"p2": testProduct("p2", "Thé vert", "500"),
	}}
	gw := &mockGateway{conf: &shopapi.OrderConfirmation{
		ID:             "ord-1",
		Subtotal:       dec("2500"),
		TaxAmount:      dec("225"),
		DiscountAmount: dec("250"),
		TotalAmount:    dec("2475"),
		Status:         "pending",
	}}
	rec := &mockRecorder{}
	svc := newTestService(catalog, gw, rec, nil)
	id := svc.Open()

	ctx := context.Background()
	require.NoError(t, svc.AddProduct(ctx, id, "p1"))
	require.NoError(t, svc.AddProduct(ctx, id, "p1"))
	require.NoError(t, svc.AddProduct(ctx, id, "p2"))
	require.NoError(t, svc.SetDiscount(id, dec("10")))
	require.NoError(t, svc.LinkCustomer(id, cart.Customer{ID: "c1", Name: "Mariama"}))

	receipt, err := svc.Checkout(ctx, id, PaymentCash)
	require.NoError(t, err)

	// Payload: absolute discount, no tax, captured prices.
	require.NotNil(t, gw.lastReq)
	assert.Equal(t, "c1", gw.lastReq.CustomerID)
	assert.True(t, dec("250").Equal(gw.lastReq.DiscountAmount))
	require.Len(t, gw.lastReq.Items, 2)
	assert.True(t, dec("2000").Equal(gw.lastReq.Items[0].TotalPrice))

	// Receipt carries the server's authoritative totals.
	assert.Equal(t, "ord-1", receipt.OrderID)
	assert.True(t, dec("2475").Equal(receipt.TotalAmount))
	require.Len(t, rec.saved, 1)

	// Success clears the cart.
	snap, err := svc.Snapshot(id)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
	assert.True(t, snap.DiscountPercent.IsZero())
	assert.Nil(t, snap.Customer)
}

func TestCheckout_EmptyCartNeverCallsGateway(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(nil, gw, nil, nil)
	id := svc.Open()

	_, err := svc.Checkout(context.Background(), id, PaymentCash)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, gw.calls, "empty cart must be rejected before any network call")
}

func TestCheckout_FailurePreservesCart(t *testing.T) {
	catalog := &mockCatalog{byID: map[string]*shopapi.Product{
		"p1": testProduct("p1", "Sucre 1kg", "1000"),
	}}
	gw := &mockGateway{err: &shopapi.APIError{Status: 400, Message: "Insufficient stock"}}
	svc := newTestService(catalog, gw, nil, nil)
	id := svc.Open()

	ctx := context.Background()
	require.NoError(t, svc.AddProduct(ctx, id, "p1"))

	_, err := svc.Checkout(ctx, id, PaymentCash)
	require.Error(t, err)
	var apiErr *shopapi.APIError
	assert.ErrorAs(t, err, &apiErr)

	snap, err := svc.Snapshot(id)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1, "failed submission must leave the cart untouched for retry")
	assert.False(t, snap.Submitting, "submitting flag must reset after failure")

	// Retry works once the gateway recovers.
	gw.err = nil
	gw.conf = &shopapi.OrderConfirmation{ID: "ord-2", TotalAmount: dec("1100")}
	_, err = svc.Checkout(ctx, id, PaymentCash)
	require.NoError(t, err)
}

func TestCheckout_DefaultPaymentIsCash(t *testing.T) {
	catalog := &mockCatalog{byID: map[string]*shopapi.Product{
		"p1": testProduct("p1", "Sucre 1kg", "1000"),
	}}
	gw := &mockGateway{conf: &shopapi.OrderConfirmation{ID: "ord-1"}}
	svc := newTestService(catalog, gw, nil, nil)
	id := svc.Open()

	require.NoError(t, svc.AddProduct(context.Background(), id, "p1"))
	_, err := svc.Checkout(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, PaymentCash, gw.lastReq.PaymentMethod)
}

func TestCheckout_InvalidPayment(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)
	id := svc.Open()

	_, err := svc.Checkout(context.Background(), id, "barter")
	require.ErrorIs(t, err, ErrInvalidPayment)
}

func TestCheckout_ReceiptFailureDoesNotFailCheckout(t *testing.T) {
	catalog := &mockCatalog{byID: map[string]*shopapi.Product{
		"p1": testProduct("p1", "Sucre 1kg", "1000"),
	}}
	gw := &mockGateway{conf: &shopapi.OrderConfirmation{ID: "ord-1"}}
	rec := &mockRecorder{err: errors.New("journal db down")}
	svc := newTestService(catalog, gw, rec, nil)
	id := svc.Open()

	require.NoError(t, svc.AddProduct(context.Background(), id, "p1"))
	receipt, err := svc.Checkout(context.Background(), id, PaymentCash)
	require.NoError(t, err, "the order exists remotely; journaling is best effort")
	assert.Equal(t, "ord-1", receipt.OrderID)
}

func TestMutationsRejectedWhileSubmitting(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)
	id := svc.Open()

	sess, err := svc.get(id)
	require.NoError(t, err)
	sess.mu.Lock()
	sess.submitting = true
	sess.mu.Unlock()

	err = svc.SetQuantity(id, "p1", 2)
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	_, err = svc.Checkout(context.Background(), id, PaymentCash)
	require.ErrorIs(t, err, ErrSubmissionInFlight)
}

func TestCloseAndSnapshotUnknownCart(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)
	id := svc.Open()

	require.NoError(t, svc.Close(id))
	require.ErrorIs(t, svc.Close(id), ErrCartNotFound)

	_, err := svc.Snapshot(id)
	require.ErrorIs(t, err, ErrCartNotFound)
}
