package currency

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCurrency(t *testing.T, code string) Currency {
	t.Helper()
	c, ok := Known(code)
	require.True(t, ok, "currency %s must be known", code)
	return c
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{name: "GNF groups with space and no decimals", amount: "1500000", code: "GNF", want: "1 500 000 GNF"},
		{name: "GNF small amount has no separator", amount: "950", code: "GNF", want: "950 GNF"},
		{name: "GNF rounds half up", amount: "10.5", code: "GNF", want: "11 GNF"},
		{name: "GNF fraction below half rounds down", amount: "10.4", code: "GNF", want: "10 GNF"},
		{name: "USD symbol before with comma", amount: "1234567.891", code: "USD", want: "$1,234,567.89"},
		{name: "USD pads to two decimals", amount: "12", code: "USD", want: "$12.00"},
		{name: "USD rounds half up at cents", amount: "0.005", code: "USD", want: "$0.01"},
		{name: "EUR symbol after with space", amount: "1234.5", code: "EUR", want: "1 234.50 €"},
		{name: "zero amount", amount: "0", code: "GNF", want: "0 GNF"},
		{name: "exactly three digits", amount: "100", code: "USD", want: "$100.00"},
		{name: "four digits", amount: "1000", code: "GNF", want: "1 000 GNF"},
		{name: "negative amount keeps sign before digits", amount: "-2500.5", code: "USD", want: "$-2,500.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCurrency(t, tt.code)
			got := Format(decimal.RequireFromString(tt.amount), c)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_ZeroDecimalsNeverHasPoint(t *testing.T) {
	gnf := mustCurrency(t, "GNF")
	for _, amount := range []string{"0", "0.4", "0.5", "999.99", "123456.789"} {
		got := Format(decimal.RequireFromString(amount), gnf)
		assert.False(t, strings.Contains(got, "."), "GNF rendering %q must not contain a decimal point (amount %s)", got, amount)
	}
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "1", groupThousands("1", " "))
	assert.Equal(t, "123", groupThousands("123", " "))
	assert.Equal(t, "1 234", groupThousands("1234", " "))
	assert.Equal(t, "12,345,678", groupThousands("12345678", ","))
	assert.Equal(t, "123456", groupThousands("123456", ""))
}
