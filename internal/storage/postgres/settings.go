package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hbadiar77-commits/satina-mama/internal/currency"
)

// Setting keys for the terminal_settings table.
const (
	keyCurrency = "selected_currency"
	keyShopID   = "selected_shop"
)

var _ currency.PreferenceStore = (*SettingsRepository)(nil)

// SettingsRepository is the durable key/value store behind the
// register's persisted preferences (the original dashboard kept these
// in browser localStorage).
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository using the pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func (r *SettingsRepository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM terminal_settings WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "read setting %q", key)
	}
	return value, nil
}

func (r *SettingsRepository) set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO terminal_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "write setting %q", key)
	}
	return nil
}

// CurrencyCode returns the persisted display currency, or "" when none
// has been chosen yet.
func (r *SettingsRepository) CurrencyCode(ctx context.Context) (string, error) {
	return r.get(ctx, keyCurrency)
}

// SetCurrencyCode persists the selected display currency.
func (r *SettingsRepository) SetCurrencyCode(ctx context.Context, code string) error {
	return r.set(ctx, keyCurrency, code)
}

// ShopID returns the persisted shop selection, or "".
func (r *SettingsRepository) ShopID(ctx context.Context) (string, error) {
	return r.get(ctx, keyShopID)
}

// SetShopID persists the shop selection.
func (r *SettingsRepository) SetShopID(ctx context.Context, id string) error {
	return r.set(ctx, keyShopID, id)
}
