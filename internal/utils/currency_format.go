package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of minor-unit places amounts are displayed with.
const AmountPrecision = 2

// FormatAmount formats an amount with the ledger's display precision.
// Example: amount 12.3456 returns "12.35"
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountPrecision)
}

// FormatWithPrecision formats an amount with the given precision
// This is a convenience function when you only have the precision value
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}

// FormatAccounting formats an amount with thousands separators, wrapping negatives in parentheses.
// Example: -1234.5 returns "(1,234.50)"
func FormatAccounting(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(AmountPrecision)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if amount.IsNegative() {
		return "(" + out + ")"
	}
	return out
}
