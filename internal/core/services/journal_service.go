package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/metrics"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
)

var ErrDescriptionMissing = fmt.Errorf("%w: journal description is required", apperrors.ErrValidation)

// journalService owns the append-only journal and the cached balances it maintains.
type journalService struct {
	BaseService
	store    portsrepo.LedgerStore
	postings domain.PostingAccounts
}

// NewJournalService creates a new JournalService.
func NewJournalService(store portsrepo.LedgerStore, options ...ServiceOption) portssvc.JournalSvcFacade {
	return newJournalService(store, newServiceConfig(options))
}

func newJournalService(store portsrepo.LedgerStore, cfg serviceConfig) *journalService {
	return &journalService{
		BaseService: BaseService{clock: cfg.clock},
		store:       store,
		postings:    cfg.postings,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// postInTx validates a draft completely before touching any state, then appends
// the entry and applies its balance changes inside tx.
// Reversals may touch inactive accounts since they only undo history.
func (s *journalService) postInTx(tx portsrepo.Tx, draft domain.JournalDraft) (domain.JournalEntry, error) {
	if strings.TrimSpace(draft.Description) == "" {
		return domain.JournalEntry{}, ErrDescriptionMissing
	}
	if draft.Date.IsZero() {
		return domain.JournalEntry{}, fmt.Errorf("%w: journal date is required", apperrors.ErrValidation)
	}
	if err := accounting.ValidateLines(draft.Lines); err != nil {
		return domain.JournalEntry{}, err
	}

	accountTypes := make(map[string]domain.AccountType, len(draft.Lines))
	for _, line := range draft.Lines {
		if _, seen := accountTypes[line.AccountID]; seen {
			continue
		}
		acc, err := tx.FindAccountByID(line.AccountID)
		if err != nil {
			return domain.JournalEntry{}, err
		}
		if !acc.IsActive && draft.ReversalOf == "" {
			return domain.JournalEntry{}, fmt.Errorf("%w: %s (%s)", apperrors.ErrAccountInactive, acc.Code, acc.AccountID)
		}
		accountTypes[line.AccountID] = acc.AccountType
	}

	if err := accounting.ValidateEntryBalance(draft.Lines); err != nil {
		return domain.JournalEntry{}, err
	}

	balanceChanges, err := accounting.BalanceChanges(draft.Lines, accountTypes)
	if err != nil {
		return domain.JournalEntry{}, err
	}

	now := s.now()
	entry := domain.JournalEntry{
		EntryID:       uuid.NewString(),
		Date:          draft.Date.UTC(),
		Description:   draft.Description,
		Reference:     draft.Reference,
		ReferenceType: draft.ReferenceType,
		Lines:         draft.Lines,
		IsAutomatic:   draft.IsAutomatic,
		ReversalOf:    draft.ReversalOf,
		Subtotal:      draft.Subtotal,
		TaxAmount:     draft.TaxAmount,
		CreatedAt:     now,
	}

	appended, err := tx.AppendEntry(entry)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("failed to append journal entry: %w", err)
	}
	if err := tx.ApplyBalanceChanges(balanceChanges, now); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return appended, nil
}

// reverseInTx posts the mirror image of an entry and flags the original.
func (s *journalService) reverseInTx(tx portsrepo.Tx, entryID string, reason string) (domain.JournalEntry, error) {
	original, err := tx.FindEntryByID(entryID)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	if original.IsReversed {
		return domain.JournalEntry{}, fmt.Errorf("%w: %s", apperrors.ErrAlreadyReversed, entryID)
	}
	if original.ReversalOf != "" {
		return domain.JournalEntry{}, fmt.Errorf("%w: %s", apperrors.ErrReversalEntry, entryID)
	}

	lines := make([]domain.JournalLine, len(original.Lines))
	for i, l := range original.Lines {
		lines[i] = l.Swapped()
	}

	description := "Reversal of Journal: " + original.Description
	if reason = strings.TrimSpace(reason); reason != "" {
		description = fmt.Sprintf("%s (%s)", description, reason)
	}

	reversal, err := s.postInTx(tx, domain.JournalDraft{
		Date:          original.Date,
		Description:   description,
		Reference:     original.Reference,
		ReferenceType: original.ReferenceType,
		Lines:         lines,
		IsAutomatic:   true,
		ReversalOf:    original.EntryID,
		Subtotal:      original.Subtotal,
		TaxAmount:     original.TaxAmount,
	})
	if err != nil {
		return domain.JournalEntry{}, err
	}
	if err := tx.MarkReversed(original.EntryID, reversal.EntryID); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("failed to flag reversed entry: %w", err)
	}
	return reversal, nil
}

// Post validates a draft and atomically appends it and updates cached balances.
func (s *journalService) Post(ctx context.Context, draft domain.JournalDraft) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		var err error
		entry, err = s.postInTx(tx, draft)
		return err
	})
	if err != nil {
		s.observeRejected(ctx, err, draft)
		return nil, err
	}
	s.observePosted(ctx, entry)
	return &entry, nil
}

// Reverse posts the mirror image of an entry and flags the original.
func (s *journalService) Reverse(ctx context.Context, entryID string, reason string) (*domain.JournalEntry, error) {
	var reversal domain.JournalEntry
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		var err error
		reversal, err = s.reverseInTx(tx, entryID, reason)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to reverse journal entry", slog.String("entry_id", entryID))
		return nil, err
	}
	metrics.JournalEntriesReversed.Inc()
	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_id", reversal.EntryID))
	return &reversal, nil
}

// RecordSale records a settled sale: cash against revenue and tax, plus the
// inventory cost relieved to COGS when given.
func (s *journalService) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*domain.JournalEntry, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}
	description := req.Description
	if description == "" {
		description = "Sale " + reference
	}

	draft := domain.JournalDraft{
		Date:          req.Date,
		Description:   description,
		Reference:     reference,
		ReferenceType: domain.RefSale,
		IsAutomatic:   true,
		Subtotal:      req.Subtotal,
		TaxAmount:     req.TaxAmount,
	}

	var entry domain.JournalEntry
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		ids, err := resolvePostings(tx, map[string]string{
			"settlement": settlementCode(s.postings, req.Method),
			"revenue":    s.postings.Revenue,
		})
		if err != nil {
			return err
		}
		draft.Lines = []domain.JournalLine{
			domain.DebitLine(ids["settlement"], req.Subtotal.Add(req.TaxAmount)),
			domain.CreditLine(ids["revenue"], req.Subtotal),
		}
		if req.TaxAmount.IsPositive() {
			taxID, err := resolvePosting(tx, s.postings.TaxPayable, "tax_payable")
			if err != nil {
				return err
			}
			draft.Lines = append(draft.Lines, domain.CreditLine(taxID, req.TaxAmount))
		}
		if req.COGS.IsPositive() {
			cost, err := resolvePostings(tx, map[string]string{"cogs": s.postings.COGS, "inventory": s.postings.Inventory})
			if err != nil {
				return err
			}
			draft.Lines = append(draft.Lines,
				domain.DebitLine(cost["cogs"], req.COGS),
				domain.CreditLine(cost["inventory"], req.COGS))
		}
		entry, err = s.postInTx(tx, draft)
		return err
	})
	if err != nil {
		s.observeRejected(ctx, err, draft)
		return nil, err
	}
	s.observePosted(ctx, entry)
	return &entry, nil
}

// RecordPurchase records a purchase debited to inventory (or the given account)
// and credited to cash/bank when paid or to accounts payable when owed.
func (s *journalService) RecordPurchase(ctx context.Context, req dto.RecordPurchaseRequest) (*domain.JournalEntry, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Paid && req.Method == "" {
		return nil, fmt.Errorf("%w: payment method is required for a paid purchase", apperrors.ErrValidation)
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}
	description := req.Description
	if description == "" {
		description = "Purchase " + reference
	}

	draft := domain.JournalDraft{
		Date:          req.Date,
		Description:   description,
		Reference:     reference,
		ReferenceType: domain.RefPurchase,
		IsAutomatic:   true,
		Subtotal:      req.Amount,
		TaxAmount:     req.TaxAmount,
	}

	var entry domain.JournalEntry
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		creditCode := s.postings.Payable
		if req.Paid {
			creditCode = settlementCode(s.postings, req.Method)
		}
		creditID, err := resolvePosting(tx, creditCode, "settlement")
		if err != nil {
			return err
		}
		debitID := req.DebitAccountID
		if debitID == "" {
			if debitID, err = resolvePosting(tx, s.postings.Inventory, "inventory"); err != nil {
				return err
			}
		}
		draft.Lines = []domain.JournalLine{domain.DebitLine(debitID, req.Amount)}
		if req.TaxAmount.IsPositive() {
			taxID, err := resolvePosting(tx, s.postings.TaxPayable, "tax_payable")
			if err != nil {
				return err
			}
			draft.Lines = append(draft.Lines, domain.DebitLine(taxID, req.TaxAmount))
		}
		draft.Lines = append(draft.Lines, domain.CreditLine(creditID, req.Amount.Add(req.TaxAmount)))
		entry, err = s.postInTx(tx, draft)
		return err
	})
	if err != nil {
		s.observeRejected(ctx, err, draft)
		return nil, err
	}
	s.observePosted(ctx, entry)
	return &entry, nil
}

// GetEntry retrieves a specific journal entry by its ID.
func (s *journalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		var err error
		entry, err = tx.FindEntryByID(entryID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		return nil, err
	}
	s.LogDebug(ctx, "Journal entry retrieved", slog.String("entry_id", entryID))
	return entry, nil
}

// ListEntries returns a page of entries in (date, sequence) order.
func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var (
		afterDate time.Time
		afterSeq  int64
	)
	hasToken := params.NextToken != nil && *params.NextToken != ""
	if hasToken {
		var err error
		afterDate, afterSeq, err = pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	var entries []domain.JournalEntry
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		entries = tx.ListEntries()
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, err
	}

	sortEntries(entries)
	page := make([]domain.JournalEntry, 0, limit)
	for _, e := range entries {
		if hasToken && !pagination.After(e.Date, e.Sequence, afterDate, afterSeq) {
			continue
		}
		if len(page) == limit+1 {
			break
		}
		page = append(page, e)
	}

	resp := &dto.ListEntriesResponse{}
	if len(page) > limit {
		page = page[:limit]
		last := page[len(page)-1]
		token := pagination.EncodeToken(last.Date, last.Sequence)
		resp.NextToken = &token
	}
	resp.Entries = dto.ToJournalEntryResponses(page)

	s.LogDebug(ctx, "Journal entries listed", slog.Int("count", len(page)))
	return resp, nil
}

// FindByReference returns every entry tagged with a business event id, in creation order.
func (s *journalService) FindByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", apperrors.ErrValidation)
	}
	var entries []domain.JournalEntry
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		entries = tx.FindEntriesByReference(reference)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *journalService) observePosted(ctx context.Context, entry domain.JournalEntry) {
	metrics.JournalEntriesPosted.WithLabelValues(string(entry.ReferenceType)).Inc()
	debit, _ := entry.Totals()
	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.Int64("sequence", entry.Sequence),
		slog.String("reference_type", string(entry.ReferenceType)),
		slog.String("amount", debit.String()))
}

func (s *journalService) observeRejected(ctx context.Context, err error, draft domain.JournalDraft) {
	metrics.JournalEntriesRejected.WithLabelValues(rejectionReason(err)).Inc()
	s.logFailure(ctx, err, "Journal entry rejected",
		slog.String("description", draft.Description),
		slog.String("reference", draft.Reference))
}

func rejectionReason(err error) string {
	var unbalanced *apperrors.UnbalancedEntryError
	switch {
	case errors.As(err, &unbalanced):
		return "unbalanced"
	case errors.Is(err, apperrors.ErrAccountInactive):
		return "inactive_account"
	case errors.Is(err, apperrors.ErrNotFound):
		return "unknown_account"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

// resolvePosting looks up the account id behind a posting role's code.
func resolvePosting(tx portsrepo.ReadTx, code string, role string) (string, error) {
	acc, err := tx.FindAccountByCode(code)
	if err != nil {
		return "", fmt.Errorf("posting account %s (%s): %w", role, code, err)
	}
	return acc.AccountID, nil
}

func resolvePostings(tx portsrepo.ReadTx, codes map[string]string) (map[string]string, error) {
	ids := make(map[string]string, len(codes))
	for role, code := range codes {
		id, err := resolvePosting(tx, code, role)
		if err != nil {
			return nil, err
		}
		ids[role] = id
	}
	return ids, nil
}

// settlementCode maps a payment method to the cash or bank account code.
func settlementCode(p domain.PostingAccounts, method domain.PaymentMethod) string {
	if method == domain.PaymentCash {
		return p.Cash
	}
	return p.Bank
}

// sortEntries orders entries by business date, then by sequence.
func sortEntries(entries []domain.JournalEntry) {
	slices.SortFunc(entries, func(a, b domain.JournalEntry) int {
		return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.Sequence, b.Sequence))
	})
}
