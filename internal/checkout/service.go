package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hbadiar77-commits/satina-mama/internal/cart"
	"github.com/hbadiar77-commits/satina-mama/internal/shopapi"
)

// Service manages cart sessions for the registers of one shop.
type Service struct {
	lg       *zap.Logger
	catalog  Catalog
	orders   OrderGateway
	receipts ReceiptRecorder
	barcodes BarcodeIndex

	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewService creates a checkout Service. receipts and barcodes may be
// nil: without a recorder submitted orders are not journaled locally,
// and without an index every scan goes to the shop API.
func NewService(
	lg *zap.Logger,
	catalog Catalog,
	orders OrderGateway,
	receipts ReceiptRecorder,
	barcodes BarcodeIndex,
) *Service {
	return &Service{
		lg:       lg.Named("checkout"),
		catalog:  catalog,
		orders:   orders,
		receipts: receipts,
		barcodes: barcodes,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Open starts a new empty cart session and returns its ID.
func (s *Service) Open() string {
	sess := &session{
		id:   uuid.New().String(),
		cart: cart.New(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess.id
}

// Close drops a cart session entirely.
func (s *Service) Close(cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[cartID]; !ok {
		return ErrCartNotFound
	}
	delete(s.sessions, cartID)
	return nil
}

func (s *Service) get(cartID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[cartID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCartNotFound
	}
	return sess, nil
}

// mutate runs fn with the session's cart under its lock. Mutations are
// rejected while a submission is in flight.
func (s *Service) mutate(cartID string, fn func(c *cart.Cart) error) error {
	sess, err := s.get(cartID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitting {
		return ErrSubmissionInFlight
	}
	return fn(sess.cart)
}

// AddProduct resolves productID through the catalog at its current
// price and adds one unit to the cart.
func (s *Service) AddProduct(ctx context.Context, cartID, productID string) error {
	// Resolve before locking: the catalog call is network I/O.
	p, err := s.catalog.ProductByID(ctx, productID)
	if err != nil {
		return err
	}
	return s.mutate(cartID, func(c *cart.Cart) error {
		c.Add(cart.Product{ID: p.ID, Name: p.Name, Price: p.Price})
		return nil
	})
}

// AddBarcode resolves a scanned barcode and adds the product. Scans the
// local index rules out are rejected without touching the shop API.
func (s *Service) AddBarcode(ctx context.Context, cartID, code string) error {
	if s.barcodes != nil && !s.barcodes.MightContain(code) {
		s.lg.Debug("Barcode ruled out by local index", zap.String("barcode", code))
		return shopapi.ErrProductNotFound
	}

	p, err := s.catalog.ProductByBarcode(ctx, code)
	if err != nil {
		return err
	}
	return s.mutate(cartID, func(c *cart.Cart) error {
		c.Add(cart.Product{ID: p.ID, Name: p.Name, Price: p.Price})
		return nil
	})
}

// SetQuantity updates a line's quantity; zero or less removes the line.
func (s *Service) SetQuantity(cartID, productID string, quantity int) error {
	return s.mutate(cartID, func(c *cart.Cart) error {
		c.SetQuantity(productID, quantity)
		return nil
	})
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(cartID, productID string) error {
	return s.mutate(cartID, func(c *cart.Cart) error {
		c.Remove(productID)
		return nil
	})
}

// SetDiscount sets the cart-level discount percentage.
func (s *Service) SetDiscount(cartID string, pct decimal.Decimal) error {
	return s.mutate(cartID, func(c *cart.Cart) error {
		return c.SetDiscountPercent(pct)
	})
}

// LinkCustomer attaches a customer to the cart.
func (s *Service) LinkCustomer(cartID string, cust cart.Customer) error {
	return s.mutate(cartID, func(c *cart.Cart) error {
		c.LinkCustomer(cust)
		return nil
	})
}

// Clear empties the cart but keeps the session open.
func (s *Service) Clear(cartID string) error {
	return s.mutate(cartID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// Snapshot returns a consistent view of the cart with freshly computed
// totals.
func (s *Service) Snapshot(cartID string) (*Snapshot, error) {
	sess, err := s.get(cartID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &Snapshot{
		ID:              sess.id,
		Lines:           sess.cart.Lines(),
		DiscountPercent: sess.cart.DiscountPercent(),
		Customer:        sess.cart.Customer(),
		Totals:          sess.cart.Totals(),
		Submitting:      sess.submitting,
	}, nil
}

// Checkout submits the cart as an order. An empty cart is rejected
// locally before any network call. On success the cart is cleared and
// the receipt journaled; on failure the cart is preserved unchanged so
// the cashier can retry.
func (s *Service) Checkout(ctx context.Context, cartID, paymentMethod string) (*Receipt, error) {
	if paymentMethod == "" {
		paymentMethod = PaymentCash
	}
	if !validPayment(paymentMethod) {
		return nil, errors.Wrap(ErrInvalidPayment, paymentMethod)
	}

	sess, err := s.get(cartID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if sess.cart.Len() == 0 {
		sess.mu.Unlock()
		return nil, ErrEmptyCart
	}

	req := buildOrderRequest(sess.cart, paymentMethod)
	sess.submitting = true
	sess.mu.Unlock()

	// The submission happens outside the lock; the submitting flag
	// keeps the session read-only meanwhile.
	conf, err := s.orders.CreateOrder(ctx, req)

	sess.mu.Lock()
	sess.submitting = false
	if err != nil {
		sess.mu.Unlock()
		return nil, errors.Wrap(err, "submit order")
	}
	sess.cart.Clear()
	sess.mu.Unlock()

	receipt := &Receipt{
		ID:             uuid.New().String(),
		OrderID:        conf.ID,
		CustomerName:   req.CustomerName,
		PaymentMethod:  paymentMethod,
		Items:          req.Items,
		Subtotal:       conf.Subtotal,
		DiscountAmount: conf.DiscountAmount,
		TaxAmount:      conf.TaxAmount,
		TotalAmount:    conf.TotalAmount,
		CreatedAt:      s.now().UTC(),
	}

	if s.receipts != nil {
		// Journaling is best effort: the order already exists remotely.
		if err := s.receipts.Save(ctx, receipt); err != nil {
			s.lg.Error("Recording receipt failed",
				zap.String("order_id", conf.ID),
				zap.Error(err),
			)
		}
	}

	s.lg.Info("Order submitted",
		zap.String("order_id", conf.ID),
		zap.String("payment_method", paymentMethod),
		zap.String("total", conf.TotalAmount.String()),
	)
	return receipt, nil
}

// buildOrderRequest serializes the cart into the shop API's
// order-creation payload. The discount travels as an absolute amount
// and tax is omitted; the server recomputes it authoritatively.
func buildOrderRequest(c *cart.Cart, paymentMethod string) shopapi.OrderRequest {
	lines := c.Lines()
	items := make([]shopapi.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = shopapi.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.LineTotal,
		}
	}

	req := shopapi.OrderRequest{
		Items:          items,
		DiscountAmount: c.Totals().DiscountAmount,
		PaymentMethod:  paymentMethod,
	}
	if cust := c.Customer(); cust != nil {
		req.CustomerID = cust.ID
		req.CustomerName = cust.Name
	}
	return req
}
