package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// TaxSvc manages tax rates and settings.
type TaxSvc interface {
	CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest) (*domain.TaxRate, error)
	ListTaxRates(ctx context.Context, activeOnly bool) ([]domain.TaxRate, error)
	DeactivateTaxRate(ctx context.Context, taxRateID string) error
	GetTaxSettings(ctx context.Context) (*domain.TaxSettings, error)
	UpdateTaxSettings(ctx context.Context, req dto.UpdateTaxSettingsRequest) (*domain.TaxSettings, error)
	// ComputeTax splits an amount using a tax rate and the inclusive setting.
	ComputeTax(ctx context.Context, req dto.ComputeTaxRequest) (*domain.TaxBreakdown, error)
}
