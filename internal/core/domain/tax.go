package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is a named tax rate expressed as a fraction (0.11 for 11%).
type TaxRate struct {
	TaxRateID string          `json:"taxRateID"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate" swaggertype:"string"`
	AccountID string          `json:"accountID"` // Liability account the tax is credited to
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TaxSettings are the ledger-wide tax options.
type TaxSettings struct {
	Inclusive        bool   `json:"inclusive"`
	DefaultTaxRateID string `json:"defaultTaxRateID,omitempty"`
}

// TaxBreakdown splits an amount into its pre-tax and tax parts.
type TaxBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal" swaggertype:"string"`
	Tax      decimal.Decimal `json:"tax" swaggertype:"string"`
	Total    decimal.Decimal `json:"total" swaggertype:"string"`
}

// ComputeTax splits amount at rate. When inclusive, amount already contains the tax.
// Tax is rounded half-up to two places and the subtotal absorbs the remainder.
func ComputeTax(amount, rate decimal.Decimal, inclusive bool) TaxBreakdown {
	if rate.LessThanOrEqual(decimal.Zero) {
		return TaxBreakdown{Subtotal: amount, Tax: decimal.Zero, Total: amount}
	}
	if inclusive {
		subtotal := amount.Div(decimal.NewFromInt(1).Add(rate))
		tax := amount.Sub(subtotal).Round(2)
		return TaxBreakdown{Subtotal: amount.Sub(tax), Tax: tax, Total: amount}
	}
	tax := amount.Mul(rate).Round(2)
	return TaxBreakdown{Subtotal: amount, Tax: tax, Total: amount.Add(tax)}
}
