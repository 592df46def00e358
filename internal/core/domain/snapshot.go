package domain

import "time"

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is the full persisted state of one ledger.
type Snapshot struct {
	Version          int                   `json:"version"`
	TakenAt          time.Time             `json:"takenAt"`
	Accounts         []Account             `json:"accounts"`
	JournalEntries   []JournalEntry        `json:"journalEntries"`
	Counterparties   []Counterparty        `json:"counterparties"`
	Invoices         []Invoice             `json:"invoices"`
	Payments         []Payment             `json:"payments"`
	TaxRates         []TaxRate             `json:"taxRates"`
	TaxSettings      TaxSettings           `json:"taxSettings"`
	// InvoiceSequences is the last generated invoice number per type.
	InvoiceSequences map[InvoiceType]int64 `json:"invoiceSequences,omitempty"`
}
