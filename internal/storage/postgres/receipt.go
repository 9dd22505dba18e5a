package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hbadiar77-commits/satina-mama/internal/checkout"
	"github.com/hbadiar77-commits/satina-mama/internal/shopapi"
)

var _ checkout.ReceiptRecorder = (*ReceiptRepository)(nil)

// ReceiptRepository journals submitted orders locally for reprint.
type ReceiptRepository struct {
	pool *pgxpool.Pool
}

// NewReceiptRepository returns a ReceiptRepository using the pool.
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

// receiptItem is the JSONB shape of one journaled line.
type receiptItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
}

// Save journals a receipt. Items are serialized to JSONB with decimal
// amounts carried as strings to avoid float drift in storage.
func (r *ReceiptRepository) Save(ctx context.Context, receipt *checkout.Receipt) error {
	items := make([]receiptItem, len(receipt.Items))
	for i, it := range receipt.Items {
		items[i] = receiptItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.String(),
			TotalPrice:  it.TotalPrice.String(),
		}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "marshal receipt items")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO receipts (
			id, order_id, customer_name, payment_method, items,
			subtotal, discount_amount, tax_amount, total_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		receipt.ID,
		receipt.OrderID,
		receipt.CustomerName,
		receipt.PaymentMethod,
		itemsJSON,
		receipt.Subtotal,
		receipt.DiscountAmount,
		receipt.TaxAmount,
		receipt.TotalAmount,
		receipt.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert receipt %q", receipt.ID)
	}
	return nil
}

// Recent returns the newest receipts first, at most limit of them.
func (r *ReceiptRepository) Recent(ctx context.Context, limit int) ([]checkout.Receipt, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, customer_name, payment_method, items,
		       subtotal, discount_amount, tax_amount, total_amount, created_at
		FROM receipts
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query receipts")
	}
	defer rows.Close()

	var out []checkout.Receipt
	for rows.Next() {
		var (
			rec       checkout.Receipt
			itemsJSON []byte
		)
		if err := rows.Scan(
			&rec.ID, &rec.OrderID, &rec.CustomerName, &rec.PaymentMethod, &itemsJSON,
			&rec.Subtotal, &rec.DiscountAmount, &rec.TaxAmount, &rec.TotalAmount, &rec.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan receipt")
		}

		items, err := unmarshalItems(itemsJSON)
		if err != nil {
			return nil, errors.Wrapf(err, "receipt %q", rec.ID)
		}
		rec.Items = items
		out = append(out, rec)
	}
	return out, rows.Err()
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "amount %q", s)
	}
	return d, nil
}

func unmarshalItems(data []byte) ([]shopapi.OrderItem, error) {
	var raw []receiptItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal items")
	}

	items := make([]shopapi.OrderItem, len(raw))
	for i, it := range raw {
		unit, err := parseAmount(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		total, err := parseAmount(it.TotalPrice)
		if err != nil {
			return nil, err
		}
		items[i] = shopapi.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   unit,
			TotalPrice:  total,
		}
	}
	return items, nil
}
