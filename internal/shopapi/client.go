package shopapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hbadiar77-commits/satina-mama/internal/currency"
)

// maxBodySize caps how much of a shop API response is read.
const maxBodySize = 1 << 20

// Client talks to the shop API over HTTP. It is safe for concurrent use.
type Client struct {
	lg      *zap.Logger
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the shop API at baseURL. A nil
// httpClient gets a 10 second timeout default.
func NewClient(lg *zap.Logger, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		lg:      lg.Named("shopapi"),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FetchRates loads the exchange-rate table from the settings endpoint.
func (c *Client) FetchRates(ctx context.Context) (currency.RateTable, error) {
	body, err := c.get(ctx, "/api/currency/settings", nil)
	if err != nil {
		return nil, err
	}

	table := currency.RateTable{}
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "exchange_rates" {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, code string) error {
			rate, err := decodeDecimal(d)
			if err != nil {
				return errors.Wrapf(err, "rate %s", code)
			}
			table[code] = rate
			return nil
		})
	}); err != nil {
		return nil, errors.Wrap(err, "decode settings")
	}
	if len(table) == 0 {
		return nil, errors.New("settings response has no exchange rates")
	}
	return table, nil
}

// ConvertAmount asks the shop API to convert amount between currencies.
func (c *Client) ConvertAmount(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	q := url.Values{
		"amount":        {amount.String()},
		"from_currency": {from},
		"to_currency":   {to},
	}
	body, err := c.get(ctx, "/api/currency/convert", q)
	if err != nil {
		return decimal.Decimal{}, err
	}

	var (
		converted decimal.Decimal
		found     bool
	)
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "converted_amount" {
			return d.Skip()
		}
		v, err := decodeDecimal(d)
		if err != nil {
			return err
		}
		converted, found = v, true
		return nil
	}); err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "decode conversion")
	}
	if !found {
		return decimal.Decimal{}, errors.New("conversion response missing converted_amount")
	}
	return converted, nil
}

// ProductByID fetches a single catalog product.
func (c *Client) ProductByID(ctx context.Context, id string) (*Product, error) {
	body, err := c.get(ctx, "/api/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeProduct(body)
}

// ProductByBarcode resolves a scanned barcode to a product.
// Returns ErrProductNotFound for unknown codes.
func (c *Client) ProductByBarcode(ctx context.Context, code string) (*Product, error) {
	body, err := c.get(ctx, "/api/products/barcode/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, err
	}
	return decodeProduct(body)
}

// CreateOrder submits an order and returns the created record with the
// server's authoritative totals.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderConfirmation, error) {
	body := encodeOrderRequest(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	return decodeOrderConfirmation(respBody)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "shop api request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
		c.lg.Warn("Shop API rejected request",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}
	return body, nil
}

// errorMessage extracts a human-readable message from an error body.
// The shop API uses {"detail": "..."}.
func errorMessage(body []byte) string {
	var msg string
	d := jx.DecodeBytes(body)
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "detail", "message":
			s, err := d.Str()
			if err != nil {
				return d.Skip()
			}
			msg = s
			return nil
		default:
			return d.Skip()
		}
	})
	return msg
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	// Settings written through older dashboard builds may quote numbers.
	return decimal.NewFromString(strings.Trim(string(n), `"`))
}

func decodeProduct(body []byte) (*Product, error) {
	var p Product
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "barcode":
			if d.Next() == jx.Null {
				return d.Null()
			}
			p.Barcode, err = d.Str()
		case "stock_quantity":
			p.StockQuantity, err = d.Int()
		case "is_active":
			p.IsActive, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	if p.ID == "" {
		return nil, errors.New("product response missing id")
	}
	return &p, nil
}

func decodeOrderConfirmation(body []byte) (*OrderConfirmation, error) {
	var o OrderConfirmation
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			o.ID, err = d.Str()
		case "subtotal":
			o.Subtotal, err = decodeDecimal(d)
		case "tax_amount":
			o.TaxAmount, err = decodeDecimal(d)
		case "discount_amount":
			o.DiscountAmount, err = decodeDecimal(d)
		case "total_amount":
			o.TotalAmount, err = decodeDecimal(d)
		case "status":
			o.Status, err = d.Str()
		case "payment_status":
			o.PaymentStatus, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	if o.ID == "" {
		return nil, errors.New("order response missing id")
	}
	return &o, nil
}

// encodeOrderRequest renders the order-creation body. Decimals are
// written as raw JSON numbers to avoid float rounding on the wire.
func encodeOrderRequest(req OrderRequest) []byte {
	var e jx.Encoder
	e.ObjStart()

	if req.CustomerID != "" {
		e.FieldStart("customer_id")
		e.Str(req.CustomerID)
	}
	if req.CustomerName != "" {
		e.FieldStart("customer_name")
		e.Str(req.CustomerName)
	}

	e.FieldStart("items")
	e.ArrStart()
	for _, it := range req.Items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		e.FieldStart("product_name")
		e.Str(it.ProductName)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("unit_price")
		e.Num(jx.Num(it.UnitPrice.String()))
		e.FieldStart("total_price")
		e.Num(jx.Num(it.TotalPrice.String()))
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("discount_amount")
	e.Num(jx.Num(req.DiscountAmount.String()))
	e.FieldStart("payment_method")
	e.Str(req.PaymentMethod)

	e.ObjEnd()
	return e.Bytes()
}
