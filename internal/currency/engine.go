package currency

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PreferenceStore persists the selected display currency across
// sessions. An empty code with a nil error means no preference is set.
type PreferenceStore interface {
	CurrencyCode(ctx context.Context) (string, error)
	SetCurrencyCode(ctx context.Context, code string) error
}

// RateSource fetches the exchange-rate table from the shop API's
// settings endpoint.
type RateSource interface {
	FetchRates(ctx context.Context) (RateTable, error)
}

// RemoteConverter performs an authoritative conversion on the shop API.
type RemoteConverter interface {
	ConvertAmount(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Engine holds the process-wide currency state: the rate table and the
// active display currency. All mutation goes through its methods.
//
// Conversion and formatting never fail toward the caller: a missing
// rate degrades to the unconverted amount with a logged diagnostic,
// because a broken rate table must not block rendering a price.
type Engine struct {
	lg     *zap.Logger
	store  PreferenceStore
	remote RemoteConverter

	sf singleflight.Group

	mu     sync.RWMutex
	rates  RateTable
	active Currency
}

// NewEngine creates an Engine with the built-in default rates and the
// base currency active. store and remote may be nil; the preference is
// then session-only and conversions are always local.
func NewEngine(lg *zap.Logger, store PreferenceStore, remote RemoteConverter) *Engine {
	return &Engine{
		lg:     lg.Named("currency"),
		store:  store,
		remote: remote,
		rates:  DefaultRates(),
		active: Base(),
	}
}

// RestorePreference adopts the persisted display currency when one is
// stored and still refers to a known currency. Anything else keeps the
// base currency.
func (e *Engine) RestorePreference(ctx context.Context) {
	if e.store == nil {
		return
	}
	code, err := e.store.CurrencyCode(ctx)
	if err != nil {
		e.lg.Warn("Reading currency preference failed, keeping base", zap.Error(err))
		return
	}
	if code == "" {
		return
	}
	c, ok := Known(code)
	if !ok {
		e.lg.Warn("Persisted currency preference is unknown, keeping base", zap.String("code", code))
		return
	}

	e.mu.Lock()
	e.active = c
	e.mu.Unlock()
}

// LoadRates fetches the rate table from src and replaces the current
// table wholesale. On any failure the current table (the built-in
// defaults at startup) stays in place and LoadRates does not fail the
// caller.
func (e *Engine) LoadRates(ctx context.Context, src RateSource) {
	table, err := src.FetchRates(ctx)
	if err != nil {
		e.lg.Warn("Fetching exchange rates failed, using fallback table", zap.Error(err))
		return
	}

	table = table.normalized()

	e.mu.Lock()
	e.rates = table
	e.mu.Unlock()

	e.lg.Info("Exchange rates loaded", zap.Int("rates", len(table)))
}

// Convert converts amount between two known currencies using the local
// rate table. When a required rate is missing it returns amount
// unchanged rather than failing, so callers can always render something.
func (e *Engine) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	e.mu.RLock()
	table := e.rates
	e.mu.RUnlock()

	out, err := table.Convert(amount, from, to)
	if err != nil {
		e.lg.Warn("Local conversion failed, returning amount unconverted",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		)
		return amount
	}
	return out
}

// ConvertAuthoritative asks the shop API for the conversion and falls
// back to the pure local Convert on any remote failure. Identical
// in-flight conversions are collapsed into a single remote call.
func (e *Engine) ConvertAuthoritative(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return amount
	}
	if e.remote == nil {
		return e.Convert(amount, from, to)
	}

	key := from + "|" + to + "|" + amount.String()
	v, err, _ := e.sf.Do(key, func() (any, error) {
		return e.remote.ConvertAmount(ctx, amount, from, to)
	})
	if err != nil {
		e.lg.Debug("Remote conversion failed, falling back to local",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		)
		return e.Convert(amount, from, to)
	}
	return v.(decimal.Decimal)
}

// Format renders amount in the named currency. Unknown codes degrade to
// the plain decimal string.
func (e *Engine) Format(amount decimal.Decimal, code string) string {
	c, ok := Known(code)
	if !ok {
		e.lg.Warn("Formatting for unknown currency", zap.String("code", code))
		return amount.String()
	}
	return Format(amount, c)
}

// FormatActive converts a base-currency amount into the active display
// currency and formats it.
func (e *Engine) FormatActive(amount decimal.Decimal) string {
	active := e.Active()
	return Format(e.Convert(amount, BaseCode, active.Code), active)
}

// Switch makes code the active display currency and persists the
// choice. Unknown codes are rejected without touching the current
// preference; the return value reports whether the switch happened.
func (e *Engine) Switch(ctx context.Context, code string) bool {
	c, ok := Known(code)
	if !ok {
		return false
	}

	e.mu.Lock()
	e.active = c
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.SetCurrencyCode(ctx, code); err != nil {
			// The in-memory switch stands: a dead settings store must
			// not block the register.
			e.lg.Error("Persisting currency preference failed", zap.String("code", code), zap.Error(err))
		}
	}
	return true
}

// Active returns the current display currency.
func (e *Engine) Active() Currency {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Rates returns a copy of the current rate table.
func (e *Engine) Rates() RateTable {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(RateTable, len(e.rates))
	for code, r := range e.rates {
		out[code] = r
	}
	return out
}
