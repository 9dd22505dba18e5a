package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateTable_ConvertIdentity(t *testing.T) {
	table := DefaultRates()
	amounts := []string{"0", "1", "100000", "0.37", "999999.99"}

	for _, c := range All() {
		for _, a := range amounts {
			amount := decimal.RequireFromString(a)
			got, err := table.Convert(amount, c.Code, c.Code)
			require.NoError(t, err)
			assert.True(t, amount.Equal(got), "convert(%s, %s, %s) must be identity", a, c.Code, c.Code)
		}
	}
}

func TestRateTable_ConvertThroughBase(t *testing.T) {
	table := RateTable{
		"GNF": decimal.NewFromInt(1),
		"USD": decimal.RequireFromString("0.00012"),
	}

	got, err := table.Convert(decimal.NewFromInt(100000), "GNF", "USD")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(12).Equal(got), "100000 GNF should be exactly 12 USD, got %s", got)
}

func TestRateTable_ConvertRoundTrip(t *testing.T) {
	table := DefaultRates()
	tolerance := decimal.RequireFromString("0.0000001")

	pairs := [][2]string{{"GNF", "USD"}, {"USD", "GNF"}, {"USD", "EUR"}, {"EUR", "GNF"}}
	for _, p := range pairs {
		amount := decimal.RequireFromString("12345.67")

		there, err := table.Convert(amount, p[0], p[1])
		require.NoError(t, err)
		back, err := table.Convert(there, p[1], p[0])
		require.NoError(t, err)

		diff := back.Sub(amount).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"%s -> %s -> %s drifted by %s", p[0], p[1], p[0], diff)
	}
}

func TestRateTable_MissingRateReturnsOriginal(t *testing.T) {
	table := RateTable{"GNF": decimal.NewFromInt(1)}
	amount := decimal.NewFromInt(500)

	got, err := table.Convert(amount, "GNF", "USD")
	require.ErrorIs(t, err, ErrRateMissing)
	assert.True(t, amount.Equal(got), "failed conversion must hand back the original amount")
}

func TestRateTable_NonPositiveRateRejected(t *testing.T) {
	table := RateTable{
		"GNF": decimal.NewFromInt(1),
		"USD": decimal.Zero,
	}

	_, err := table.Convert(decimal.NewFromInt(10), "GNF", "USD")
	require.ErrorIs(t, err, ErrRateMissing)
}

func TestRateTable_Normalized(t *testing.T) {
	table := RateTable{
		"GNF": decimal.RequireFromString("2"), // wrong on purpose
		"USD": decimal.RequireFromString("0.00012"),
		"XXX": decimal.RequireFromString("-3"),
	}

	n := table.normalized()

	base, ok := n.Rate("GNF")
	require.True(t, ok)
	assert.True(t, base.Equal(decimal.NewFromInt(1)), "base rate must be pinned to 1")

	_, ok = n.Rate("XXX")
	assert.False(t, ok, "non-positive rates must be discarded")

	usd, ok := n.Rate("USD")
	require.True(t, ok)
	assert.True(t, usd.Equal(decimal.RequireFromString("0.00012")))
}
