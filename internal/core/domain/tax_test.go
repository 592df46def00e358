package domain_test

import (
	"testing"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeTax(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name      string
		amount    string
		rate      string
		inclusive bool
		subtotal  string
		tax       string
		total     string
	}{
		{"exclusive", "100", "0.11", false, "100", "11", "111"},
		{"inclusive", "111", "0.11", true, "100", "11", "111"},
		{"exclusive rounds half up", "10.05", "0.1", false, "10.05", "1.01", "11.06"},
		{"zero rate", "50", "0", false, "50", "0", "50"},
		{"inclusive remainder in subtotal", "100", "0.11", true, "90.09", "9.91", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ComputeTax(d(tt.amount), d(tt.rate), tt.inclusive)
			assert.True(t, d(tt.subtotal).Equal(got.Subtotal), "subtotal %s", got.Subtotal)
			assert.True(t, d(tt.tax).Equal(got.Tax), "tax %s", got.Tax)
			assert.True(t, d(tt.total).Equal(got.Total), "total %s", got.Total)
		})
	}
}
