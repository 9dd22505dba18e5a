package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders amount in the given currency: rounded half-up to the
// currency's decimal places, thousands-separated every three digits of
// the integer part, with the symbol placed per configuration. A
// zero-decimal currency renders no fractional part at all.
func Format(amount decimal.Decimal, c Currency) string {
	// decimal.Round is round-half-away-from-zero, which is the standard
	// half-up behaviour for the non-negative amounts rendered here.
	s := amount.Round(c.Decimals).StringFixed(c.Decimals)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	out := groupThousands(intPart, c.Separator)
	if hasFrac {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}

	if c.Position == SymbolBefore {
		return c.Symbol + out
	}
	return out + " " + c.Symbol
}

// groupThousands inserts sep every three digits from the right.
func groupThousands(digits, sep string) string {
	n := len(digits)
	if n <= 3 || sep == "" {
		return digits
	}

	var b strings.Builder
	b.Grow(n + (n-1)/3*len(sep))

	first := n % 3
	if first == 0 {
		first = 3
	}
	b.WriteString(digits[:first])
	for i := first; i < n; i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
