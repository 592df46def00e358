package memory

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var errReadOnly = errors.New("write attempted in a read-only view")

// txn implements repositories.Tx over the shared state.
type txn struct {
	state    *state
	writable bool
	undo     []func()
}

var _ repositories.Tx = (*txn)(nil)

func (t *txn) record(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *txn) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *txn) checkWritable() error {
	if !t.writable {
		return fmt.Errorf("%w: %w", apperrors.ErrInternal, errReadOnly)
	}
	return nil
}

// --- accounts ---

func (t *txn) FindAccountByID(accountID string) (*domain.Account, error) {
	a, ok := t.state.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &a, nil
}

func (t *txn) FindAccountByCode(code string) (*domain.Account, error) {
	id, ok := t.state.codes[code]
	if !ok {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	return t.FindAccountByID(id)
}

func (t *txn) ListAccounts() []domain.Account {
	out := make([]domain.Account, 0, len(t.state.accounts))
	for _, a := range t.state.accounts {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b domain.Account) int { return cmp.Compare(a.Code, b.Code) })
	return out
}

func (t *txn) SaveAccount(account domain.Account) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if _, ok := t.state.codes[account.Code]; ok {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, account.Code)
	}
	if _, ok := t.state.accounts[account.AccountID]; ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	t.state.accounts[account.AccountID] = account
	t.state.codes[account.Code] = account.AccountID
	t.record(func() {
		delete(t.state.accounts, account.AccountID)
		delete(t.state.codes, account.Code)
	})
	return nil
}

func (t *txn) UpdateAccount(account domain.Account) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, ok := t.state.accounts[account.AccountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	if prev.Code != account.Code {
		return fmt.Errorf("%w: account code cannot change", apperrors.ErrValidation)
	}
	// The cached balance is owned by the journal.
	account.Balance = prev.Balance
	t.state.accounts[account.AccountID] = account
	t.record(func() { t.state.accounts[prev.AccountID] = prev })
	return nil
}

func (t *txn) DeleteAccount(accountID string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, ok := t.state.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	delete(t.state.accounts, accountID)
	delete(t.state.codes, prev.Code)
	t.record(func() {
		t.state.accounts[accountID] = prev
		t.state.codes[prev.Code] = accountID
	})
	return nil
}

func (t *txn) ApplyBalanceChanges(balanceChanges map[string]decimal.Decimal, now time.Time) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	for id := range balanceChanges {
		if _, ok := t.state.accounts[id]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	for id, delta := range balanceChanges {
		prev := t.state.accounts[id]
		next := prev
		next.Balance = prev.Balance.Add(delta)
		next.LastUpdatedAt = now
		t.state.accounts[id] = next
		t.record(func() { t.state.accounts[id] = prev })
	}
	return nil
}

func (t *txn) SetBalance(accountID string, balance decimal.Decimal) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, ok := t.state.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	next := prev
	next.Balance = balance
	t.state.accounts[accountID] = next
	t.record(func() { t.state.accounts[accountID] = prev })
	return nil
}

// --- journal ---

func (t *txn) FindEntryByID(entryID string) (*domain.JournalEntry, error) {
	i, ok := t.state.entryIndex[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	e := cloneEntry(t.state.entries[i])
	return &e, nil
}

func (t *txn) ListEntries() []domain.JournalEntry {
	out := make([]domain.JournalEntry, len(t.state.entries))
	for i, e := range t.state.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func (t *txn) FindEntriesByReference(reference string) []domain.JournalEntry {
	var out []domain.JournalEntry
	for _, e := range t.state.entries {
		if e.Reference == reference {
			out = append(out, cloneEntry(e))
		}
	}
	return out
}

func (t *txn) CountEntriesForAccount(accountID string) int {
	n := 0
	for _, e := range t.state.entries {
		if e.Touches(accountID) {
			n++
		}
	}
	return n
}

func (t *txn) AppendEntry(entry domain.JournalEntry) (domain.JournalEntry, error) {
	if err := t.checkWritable(); err != nil {
		return domain.JournalEntry{}, err
	}
	if _, ok := t.state.entryIndex[entry.EntryID]; ok {
		return domain.JournalEntry{}, fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
	}
	prevSeq := t.state.lastSequence
	t.state.lastSequence++
	entry = cloneEntry(entry)
	entry.Sequence = t.state.lastSequence
	t.state.entryIndex[entry.EntryID] = len(t.state.entries)
	t.state.entries = append(t.state.entries, entry)
	t.record(func() {
		t.state.entries = t.state.entries[:len(t.state.entries)-1]
		delete(t.state.entryIndex, entry.EntryID)
		t.state.lastSequence = prevSeq
	})
	return cloneEntry(entry), nil
}

func (t *txn) MarkReversed(entryID string, reversedBy string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	i, ok := t.state.entryIndex[entryID]
	if !ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	prev := t.state.entries[i]
	next := prev
	next.IsReversed = true
	next.ReversedBy = reversedBy
	t.state.entries[i] = next
	t.record(func() { t.state.entries[i] = prev })
	return nil
}

// --- counterparties ---

func (t *txn) FindCounterpartyByID(counterpartyID string) (*domain.Counterparty, error) {
	c, ok := t.state.counterparties[counterpartyID]
	if !ok {
		return nil, fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, counterpartyID)
	}
	return &c, nil
}

func (t *txn) ListCounterparties(kind domain.CounterpartyKind) []domain.Counterparty {
	var out []domain.Counterparty
	for _, c := range t.state.counterparties {
		if kind == "" || c.Kind == kind {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Counterparty) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.CounterpartyID, b.CounterpartyID))
	})
	return out
}

func (t *txn) SaveCounterparty(counterparty domain.Counterparty) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	id := counterparty.CounterpartyID
	prev, existed := t.state.counterparties[id]
	t.state.counterparties[id] = counterparty
	t.record(func() {
		if existed {
			t.state.counterparties[id] = prev
		} else {
			delete(t.state.counterparties, id)
		}
	})
	return nil
}

func (t *txn) DeleteCounterparty(counterpartyID string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, ok := t.state.counterparties[counterpartyID]
	if !ok {
		return fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, counterpartyID)
	}
	delete(t.state.counterparties, counterpartyID)
	t.record(func() { t.state.counterparties[counterpartyID] = prev })
	return nil
}

// --- invoices ---

func (t *txn) FindInvoiceByID(invoiceID string) (*domain.Invoice, error) {
	inv, ok := t.state.invoices[invoiceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvoiceNotFound, invoiceID)
	}
	inv = cloneInvoice(inv)
	return &inv, nil
}

func (t *txn) ListInvoices(filter repositories.InvoiceFilter) []domain.Invoice {
	var out []domain.Invoice
	for _, inv := range t.state.invoices {
		if filter.Type != "" && inv.Type != filter.Type {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.CounterpartyID != "" && inv.CounterpartyID != filter.CounterpartyID {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	slices.SortFunc(out, func(a, b domain.Invoice) int {
		return cmp.Or(a.IssueDate.Compare(b.IssueDate), cmp.Compare(a.InvoiceID, b.InvoiceID))
	})
	return out
}

func (t *txn) SaveInvoice(invoice domain.Invoice) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	id := invoice.InvoiceID
	prev, existed := t.state.invoices[id]
	t.state.invoices[id] = cloneInvoice(invoice)
	t.record(func() {
		if existed {
			t.state.invoices[id] = prev
		} else {
			delete(t.state.invoices, id)
		}
	})
	return nil
}

func (t *txn) DeleteInvoice(invoiceID string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, ok := t.state.invoices[invoiceID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrInvoiceNotFound, invoiceID)
	}
	delete(t.state.invoices, invoiceID)
	t.record(func() { t.state.invoices[invoiceID] = prev })
	return nil
}

func (t *txn) InvoiceSequences() map[domain.InvoiceType]int64 {
	return maps.Clone(t.state.invoiceSeq)
}

func (t *txn) NextInvoiceSequence(invoiceType domain.InvoiceType) (int64, error) {
	if err := t.checkWritable(); err != nil {
		return 0, err
	}
	prev := t.state.invoiceSeq[invoiceType]
	t.state.invoiceSeq[invoiceType] = prev + 1
	t.record(func() { t.state.invoiceSeq[invoiceType] = prev })
	return prev + 1, nil
}

// --- payments ---

func (t *txn) ListPayments(invoiceID string) []domain.Payment {
	var out []domain.Payment
	for _, p := range t.state.payments {
		if invoiceID == "" || p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out
}

func (t *txn) SavePayment(payment domain.Payment) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.state.payments = append(t.state.payments, payment)
	t.record(func() { t.state.payments = t.state.payments[:len(t.state.payments)-1] })
	return nil
}

// --- tax ---

func (t *txn) FindTaxRateByID(taxRateID string) (*domain.TaxRate, error) {
	r, ok := t.state.taxRates[taxRateID]
	if !ok {
		return nil, fmt.Errorf("%w: tax rate %s", apperrors.ErrNotFound, taxRateID)
	}
	return &r, nil
}

func (t *txn) ListTaxRates() []domain.TaxRate {
	out := make([]domain.TaxRate, 0, len(t.state.taxRates))
	for _, r := range t.state.taxRates {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b domain.TaxRate) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.TaxRateID, b.TaxRateID))
	})
	return out
}

func (t *txn) GetTaxSettings() domain.TaxSettings {
	return t.state.taxSettings
}

func (t *txn) SaveTaxRate(rate domain.TaxRate) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	id := rate.TaxRateID
	prev, existed := t.state.taxRates[id]
	t.state.taxRates[id] = rate
	t.record(func() {
		if existed {
			t.state.taxRates[id] = prev
		} else {
			delete(t.state.taxRates, id)
		}
	})
	return nil
}

func (t *txn) SaveTaxSettings(settings domain.TaxSettings) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev := t.state.taxSettings
	t.state.taxSettings = settings
	t.record(func() { t.state.taxSettings = prev })
	return nil
}
