package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the store, the ledger and the transport.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found or no permission")
	ErrDuplicateName      = errors.New("a debtor with this name already exists")
	ErrNoOpenDebts        = errors.New("no unpaid debts to apply this payment to")
	ErrOutstandingBalance = errors.New("debtor still owes money; record the remaining payments first")
	ErrHasPayments        = errors.New("debt item has payments allocated; delete those payments first")

	// ErrLedgerConflict means an item's allocations changed between planning
	// and writing an allocation. The transaction is rolled back.
	ErrLedgerConflict = errors.New("ledger changed during allocation")
)

// ValidationError reports a single malformed or missing field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if strings.HasPrefix(e.Message, e.Field+" ") {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid is shorthand for a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
