// Package models defines the core domain models for Debtbook.
//
// # Entities
//
//   - Debtor: a third party who owes money to the account holder
//   - DebtItem: a single itemized charge against a debtor
//   - Payment: one repayment event, spread over debt items by allocations
//   - PaymentAllocation: the portion of one payment applied to one debt item
//   - User: an account holder, supplied by the authentication layer
//
// Every debtor row is owned by exactly one user. Items, payments and
// allocations inherit ownership through their debtor.
//
// # Derived values
//
// Balances are never stored. AmountPaid on a DebtItem is filled in by the
// store from the allocation rows when the item is read; AmountOwed and
// IsSettled are computed from it. There is no mutable paid/unpaid flag.
package models
