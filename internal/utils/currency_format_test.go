package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.35", FormatAmount(decimal.RequireFromString("12.3456")))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "12", FormatWithPrecision(decimal.RequireFromString("12.3456"), 0))
}

func TestFormatAccounting(t *testing.T) {
	tests := map[string]string{
		"0":           "0.00",
		"999.5":       "999.50",
		"1000":        "1,000.00",
		"-1234.5":     "(1,234.50)",
		"1234567.891": "1,234,567.89",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatAccounting(decimal.RequireFromString(in)), in)
	}
}
