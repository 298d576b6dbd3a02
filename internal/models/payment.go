package models

import "github.com/mmynk/debtbook/internal/money"

// Payment is a single repayment event from a debtor.
//
// Invariant: Amount equals the sum of its allocations.
type Payment struct {
	// ID is the unique identifier ("pay_" TypeID).
	ID string

	// UserID is the account that recorded the payment.
	UserID string

	// DebtorID is the paying debtor.
	DebtorID string

	// Amount is the total amount applied to the ledger.
	Amount money.Amount

	// PaymentDate is the logical date the money was received (YYYY-MM-DD).
	PaymentDate string

	// CreatedAt is the Unix millisecond timestamp of creation.
	CreatedAt int64

	// Allocations are populated by list queries.
	Allocations []PaymentAllocation
}

// PaymentAllocation is the portion of one payment applied to one debt item.
type PaymentAllocation struct {
	PaymentID       string
	DebtItemID      string
	AmountAllocated money.Amount
}
