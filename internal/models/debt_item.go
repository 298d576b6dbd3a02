package models

import "github.com/mmynk/debtbook/internal/money"

// DebtItem is a single itemized charge against a debtor.
// Items are immutable after creation; they are only ever deleted.
type DebtItem struct {
	// ID is the unique identifier ("item_" TypeID).
	ID string

	// DebtorID is the owning debtor.
	DebtorID string

	// Description is what was charged (e.g., "Concert ticket").
	Description string

	// Quantity is a positive count of units.
	Quantity int64

	// UnitPrice is the positive price of one unit.
	UnitPrice money.Amount

	// TotalAmount is Quantity * UnitPrice, fixed at creation.
	TotalAmount money.Amount

	// TransactionDate is the logical date of the charge (YYYY-MM-DD).
	// Allocation order is oldest TransactionDate first.
	TransactionDate string

	// CreatedAt is the Unix millisecond timestamp of creation.
	CreatedAt int64

	// AmountPaid is derived: the sum of allocations to this item.
	// Populated by the store on read; never written.
	AmountPaid money.Amount
}

// AmountOwed returns TotalAmount - AmountPaid.
func (i *DebtItem) AmountOwed() money.Amount {
	return i.TotalAmount - i.AmountPaid
}

// IsSettled reports whether the owed amount is within tolerance of zero.
func (i *DebtItem) IsSettled() bool {
	return i.AmountOwed().Negligible()
}

// DateLayout is the format of TransactionDate and PaymentDate.
const DateLayout = "2006-01-02"
