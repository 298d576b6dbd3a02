package models

import "github.com/mmynk/debtbook/internal/money"

// Debtor is a third party who owes money to the account holder.
type Debtor struct {
	// ID is the unique identifier ("dbt_" TypeID).
	ID string

	// UserID is the owning account.
	UserID string

	// Name is the display name, unique per owner.
	Name string

	// ContactInfo is optional free text.
	ContactInfo string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// DebtorSummary is a debtor together with its ledger aggregates,
// as returned by the debtor list.
type DebtorSummary struct {
	Debtor

	// TotalCharged is the sum of TotalAmount over the debtor's items.
	TotalCharged money.Amount

	// TotalPaid is the sum of all allocations to the debtor's items.
	TotalPaid money.Amount
}
