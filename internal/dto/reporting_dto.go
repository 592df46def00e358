package dto

import (
	"time"
)

// GeneralLedgerParams selects the accounts and window of a general ledger view.
// An empty AccountID selects every active account.
type GeneralLedgerParams struct {
	AccountID string
	StartDate *time.Time
	EndDate   *time.Time
}

// PeriodParams is a closed reporting window.
type PeriodParams struct {
	StartDate time.Time
	EndDate   time.Time
}
