// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
)

// Ledger is the set of ledger operations available both on a store and
// inside one of its transactions.
//
// Reads scoped by userID return models.ErrNotFound for rows that do not
// exist and for rows owned by another account alike.
type Ledger interface {
	// CreateDebtor inserts a debtor. Returns models.ErrDuplicateName when the
	// owner already has a debtor with that name.
	CreateDebtor(ctx context.Context, debtor *models.Debtor) error

	// GetDebtor retrieves a debtor owned by userID.
	GetDebtor(ctx context.Context, userID, debtorID string) (*models.Debtor, error)

	// LockDebtor is GetDebtor that also serializes further ledger writes for
	// the debtor until the surrounding transaction ends.
	LockDebtor(ctx context.Context, userID, debtorID string) (*models.Debtor, error)

	// ListDebtors returns the owner's debtors ordered by name, with totals.
	ListDebtors(ctx context.Context, userID string) ([]*models.DebtorSummary, error)

	// UpdateDebtor renames a debtor and replaces its contact info.
	UpdateDebtor(ctx context.Context, debtor *models.Debtor) error

	// DeleteDebtor removes a debtor and, by cascade, everything it owns.
	DeleteDebtor(ctx context.Context, userID, debtorID string) error

	CreateDebtItem(ctx context.Context, item *models.DebtItem) error

	// GetDebtItem retrieves an item whose debtor is owned by userID,
	// with AmountPaid filled in.
	GetDebtItem(ctx context.Context, userID, itemID string) (*models.DebtItem, error)

	// ListDebtItems returns the debtor's items oldest first
	// (transaction date, creation time, id) with AmountPaid filled in.
	ListDebtItems(ctx context.Context, debtorID string) ([]*models.DebtItem, error)

	DeleteDebtItem(ctx context.Context, itemID string) error

	// ItemAllocatedTotal sums every allocation made to an item.
	ItemAllocatedTotal(ctx context.Context, itemID string) (money.Amount, error)

	CreatePayment(ctx context.Context, payment *models.Payment) error

	// GetPayment retrieves a payment whose debtor is owned by userID.
	GetPayment(ctx context.Context, userID, paymentID string) (*models.Payment, error)

	// ListPayments returns the debtor's payments newest first,
	// each with its allocations.
	ListPayments(ctx context.Context, debtorID string) ([]*models.Payment, error)

	DeletePayment(ctx context.Context, paymentID string) error
	UpdatePaymentAmount(ctx context.Context, paymentID string, amount money.Amount) error

	CreateAllocation(ctx context.Context, alloc models.PaymentAllocation) error
	ListAllocationsByItem(ctx context.Context, itemID string) ([]models.PaymentAllocation, error)
	DeleteAllocationsByItem(ctx context.Context, itemID string) error
	CountAllocationsByPayment(ctx context.Context, paymentID string) (int, error)
}

// Users holds account records for the authentication layer.
type Users interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns models.ErrNotFound when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the interface for debt ledger storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the ledger or service layers.
type Store interface {
	Ledger
	Users

	// WithTx runs fn inside a single transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Ledger) error) error

	// Migrate creates or upgrades the schema.
	Migrate(ctx context.Context) error

	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
