package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
)

type taxService struct {
	BaseService
	store    portsrepo.LedgerStore
	postings domain.PostingAccounts
}

// NewTaxService creates a new tax configuration service.
func NewTaxService(store portsrepo.LedgerStore, options ...ServiceOption) portssvc.TaxSvc {
	cfg := newServiceConfig(options)
	return &taxService{BaseService: BaseService{clock: cfg.clock}, store: store, postings: cfg.postings}
}

var _ portssvc.TaxSvc = (*taxService)(nil)

// CreateTaxRate adds an active tax rate credited to a liability account.
func (s *taxService) CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest) (*domain.TaxRate, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	rate := domain.TaxRate{
		TaxRateID: uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Rate:      req.Rate,
		AccountID: req.AccountID,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		if rate.AccountID == "" {
			id, err := resolvePosting(tx, s.postings.TaxPayable, "tax_payable")
			if err != nil {
				return err
			}
			rate.AccountID = id
		}
		acc, err := tx.FindAccountByID(rate.AccountID)
		if err != nil {
			return err
		}
		if acc.AccountType != domain.Liability {
			return apperrors.Validationf("tax account %s must be a liability, got %s", acc.Code, acc.AccountType)
		}
		return tx.SaveTaxRate(rate)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create tax rate", slog.String("name", req.Name))
		return nil, err
	}
	s.LogInfo(ctx, "Tax rate created",
		slog.String("tax_rate_id", rate.TaxRateID),
		slog.String("rate", rate.Rate.String()))
	return &rate, nil
}

// ListTaxRates lists tax rates, optionally only the active ones.
func (s *taxService) ListTaxRates(ctx context.Context, activeOnly bool) ([]domain.TaxRate, error) {
	var rates []domain.TaxRate
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		for _, r := range tx.ListTaxRates() {
			if activeOnly && !r.IsActive {
				continue
			}
			rates = append(rates, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// DeactivateTaxRate retires a tax rate and clears it as the default.
func (s *taxService) DeactivateTaxRate(ctx context.Context, taxRateID string) error {
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		rate, err := tx.FindTaxRateByID(taxRateID)
		if err != nil {
			return err
		}
		rate.IsActive = false
		if err := tx.SaveTaxRate(*rate); err != nil {
			return err
		}
		settings := tx.GetTaxSettings()
		if settings.DefaultTaxRateID == taxRateID {
			settings.DefaultTaxRateID = ""
			return tx.SaveTaxSettings(settings)
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to deactivate tax rate", slog.String("tax_rate_id", taxRateID))
		return err
	}
	s.LogInfo(ctx, "Tax rate deactivated", slog.String("tax_rate_id", taxRateID))
	return nil
}

// GetTaxSettings returns the ledger-wide tax options.
func (s *taxService) GetTaxSettings(ctx context.Context) (*domain.TaxSettings, error) {
	var settings domain.TaxSettings
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		settings = tx.GetTaxSettings()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateTaxSettings changes the inclusive flag and the default rate. Nil fields are left as they are.
func (s *taxService) UpdateTaxSettings(ctx context.Context, req dto.UpdateTaxSettingsRequest) (*domain.TaxSettings, error) {
	var settings domain.TaxSettings
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		settings = tx.GetTaxSettings()
		if req.Inclusive != nil {
			settings.Inclusive = *req.Inclusive
		}
		if req.DefaultTaxRateID != nil {
			if id := *req.DefaultTaxRateID; id != "" {
				rate, err := tx.FindTaxRateByID(id)
				if err != nil {
					return err
				}
				if !rate.IsActive {
					return apperrors.Validationf("tax rate %s is inactive", rate.Name)
				}
			}
			settings.DefaultTaxRateID = *req.DefaultTaxRateID
		}
		return tx.SaveTaxSettings(settings)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update tax settings")
		return nil, err
	}
	s.LogInfo(ctx, "Tax settings updated",
		slog.Bool("inclusive", settings.Inclusive),
		slog.String("default_tax_rate_id", settings.DefaultTaxRateID))
	return &settings, nil
}

// ComputeTax splits an amount using the given rate, or the default rate, and the inclusive setting.
func (s *taxService) ComputeTax(ctx context.Context, req dto.ComputeTaxRequest) (*domain.TaxBreakdown, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var breakdown domain.TaxBreakdown
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		settings := tx.GetTaxSettings()
		id := req.TaxRateID
		if id == "" {
			id = settings.DefaultTaxRateID
		}
		rate := decimal.Zero
		if id != "" {
			r, err := tx.FindTaxRateByID(id)
			if err != nil {
				return err
			}
			if !r.IsActive {
				return fmt.Errorf("%w: tax rate %s is inactive", apperrors.ErrValidation, r.Name)
			}
			rate = r.Rate
		}
		breakdown = domain.ComputeTax(req.Amount, rate, settings.Inclusive)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to compute tax", slog.String("tax_rate_id", req.TaxRateID))
		return nil, err
	}
	return &breakdown, nil
}
