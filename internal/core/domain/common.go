package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// BalanceTolerance is the largest difference still treated as balanced (1e-2 of a cent).
var BalanceTolerance = decimal.New(1, -4)

// EndOfTime is used as the cutoff when replaying the full journal.
var EndOfTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
