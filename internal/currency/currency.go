// Package currency holds the display-currency state for the gateway:
// the fixed set of known currencies, the exchange-rate table, local
// conversion, locale-aware formatting, and the persisted preference.
package currency

// BaseCode is the reference currency. All exchange rates are expressed
// against it and its own rate is always exactly 1.0.
const BaseCode = "GNF"

// SymbolPosition says whether a currency's symbol renders before or
// after the amount.
type SymbolPosition string

const (
	SymbolBefore SymbolPosition = "before"
	SymbolAfter  SymbolPosition = "after"
)

// Currency describes how amounts in one currency are rendered.
// The set of known currencies is fixed configuration, not user-editable.
type Currency struct {
	Code      string
	Name      string
	Symbol    string
	Position  SymbolPosition
	Decimals  int32
	Separator string
}

// builtin is the fixed currency configuration, mirroring the shop's
// settings screen. Order matters for display.
var builtin = []Currency{
	{
		Code:      "GNF",
		Name:      "Franc Guinéen",
		Symbol:    "GNF",
		Position:  SymbolAfter,
		Decimals:  0,
		Separator: " ",
	},
	{
		Code:      "USD",
		Name:      "Dollar US",
		Symbol:    "$",
		Position:  SymbolBefore,
		Decimals:  2,
		Separator: ",",
	},
	{
		Code:      "EUR",
		Name:      "Euro",
		Symbol:    "€",
		Position:  SymbolAfter,
		Decimals:  2,
		Separator: " ",
	},
}

// Known returns the currency configuration for code, or false when the
// code is not a known currency.
func Known(code string) (Currency, bool) {
	for _, c := range builtin {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// All returns the known currencies in display order.
func All() []Currency {
	out := make([]Currency, len(builtin))
	copy(out, builtin)
	return out
}

// Base returns the base currency configuration.
func Base() Currency {
	c, _ := Known(BaseCode)
	return c
}
