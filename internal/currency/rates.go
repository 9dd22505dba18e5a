package currency

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrRateMissing is returned by RateTable.Convert when a required rate
// is absent or non-positive.
var ErrRateMissing = errors.New("exchange rate missing")

// RateTable maps a currency code to its rate: target units per 1 unit
// of the base currency. The base currency's rate is always exactly 1.
// Tables are value types replaced wholesale on refresh, never mutated
// in place.
type RateTable map[string]decimal.Decimal

// DefaultRates is the built-in fallback used when the shop API's
// settings endpoint is unreachable at startup. The approximations match
// the shop's seeded settings.
func DefaultRates() RateTable {
	return RateTable{
		"GNF": decimal.NewFromInt(1),
		"USD": decimal.RequireFromString("0.00012"),
		"EUR": decimal.RequireFromString("0.00011"),
	}
}

// Rate returns the rate for code. The base currency always resolves to
// exactly 1 even when absent from the table.
func (t RateTable) Rate(code string) (decimal.Decimal, bool) {
	if code == BaseCode {
		return decimal.NewFromInt(1), true
	}
	r, ok := t[code]
	if !ok || !r.IsPositive() {
		return decimal.Decimal{}, false
	}
	return r, true
}

// Convert converts amount between two currencies through the base
// currency. Identity conversions short-circuit and return amount
// unchanged, avoiding rounding drift.
func (t RateTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	base := amount
	if from != BaseCode {
		r, ok := t.Rate(from)
		if !ok {
			return amount, errors.Wrap(ErrRateMissing, from)
		}
		base = amount.Div(r)
	}

	if to == BaseCode {
		return base, nil
	}
	r, ok := t.Rate(to)
	if !ok {
		return amount, errors.Wrap(ErrRateMissing, to)
	}
	return base.Mul(r), nil
}

// normalized returns a copy of t containing only positive finite rates,
// with the base rate pinned to exactly 1.
func (t RateTable) normalized() RateTable {
	out := make(RateTable, len(t)+1)
	for code, r := range t {
		if r.IsPositive() {
			out[code] = r
		}
	}
	out[BaseCode] = decimal.NewFromInt(1)
	return out
}
