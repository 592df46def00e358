package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request conflicts with recorded history.
var ErrConflict = errors.New("conflict with current state")

// ErrInternal indicates an unexpected failure inside the ledger or its storage.
var ErrInternal = errors.New("internal error")

// kindError is a specific error that belongs to one of the kinds above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrDuplicateCode     = newKind(ErrValidation, "account code already exists")
	ErrAccountInactive   = newKind(ErrValidation, "account is inactive")
	ErrOverpayment       = newKind(ErrValidation, "payment exceeds outstanding invoice amount")
	ErrAccountHasHistory = newKind(ErrConflict, "account is referenced by journal entries")
	ErrAlreadyReversed   = newKind(ErrConflict, "journal entry is already reversed")
	ErrReversalEntry     = newKind(ErrConflict, "reversal entries cannot be reversed")
	ErrInvoiceNotOpen    = newKind(ErrConflict, "invoice is not open")
	ErrHasPayments       = newKind(ErrConflict, "invoice has recorded payments")
	ErrHasOpenInvoices   = newKind(ErrConflict, "counterparty has recorded invoices")
	ErrInvoiceNotFound   = newKind(ErrNotFound, "invoice not found")
)

// UnbalancedEntryError is returned when a journal draft's debit and credit totals differ.
type UnbalancedEntryError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("unbalanced entry: debits %s, credits %s", e.DebitTotal.String(), e.CreditTotal.String())
}

// Unwrap makes every unbalanced entry a validation error.
func (e *UnbalancedEntryError) Unwrap() error { return ErrValidation }

// AppError wraps infrastructure failures with a status-like code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInternal
}

// NewAppError builds an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
