package dto

import (
	"github.com/shopspring/decimal"
)

// CreateTaxRateRequest defines the data needed to create a tax rate.
type CreateTaxRateRequest struct {
	Name      string          `json:"name" binding:"required"`
	Rate      decimal.Decimal `json:"rate" binding:"gte=0,lt=1" swaggertype:"string"`
	AccountID string          `json:"accountID"` // Defaults to the tax payable account
}

// UpdateTaxSettingsRequest changes the ledger-wide tax options.
type UpdateTaxSettingsRequest struct {
	Inclusive        *bool   `json:"inclusive"`
	DefaultTaxRateID *string `json:"defaultTaxRateID"`
}

// ComputeTaxRequest asks for the tax split of an amount.
type ComputeTaxRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"gte=0" swaggertype:"string"`
	TaxRateID string          `json:"taxRateID"` // Defaults to the configured default rate
}
