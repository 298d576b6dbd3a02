// Package calculator derives balances from stored debt items and plans FIFO
// payment allocations. It performs no I/O.
package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
)

// ErrNegativeBalance reports a debtor whose allocations exceed its charges.
// Stored state should never reach it.
var ErrNegativeBalance = errors.New("debtor balance is negative")

// ItemBalance is the read-side view of one debt item.
type ItemBalance struct {
	ItemID      string
	TotalAmount money.Amount
	AmountPaid  money.Amount
	AmountOwed  money.Amount
	IsSettled   bool
}

// DebtorBalance aggregates a debtor's items.
type DebtorBalance struct {
	DebtorID     string
	TotalCharged money.Amount
	TotalPaid    money.Amount
	TotalUnpaid  money.Amount // TotalCharged - TotalPaid
	Items        []ItemBalance
}

// Settled reports whether the debtor's unpaid total is within tolerance.
// A negative total is never settled.
func (b DebtorBalance) Settled() bool {
	return b.TotalUnpaid >= 0 && b.TotalUnpaid.Negligible()
}

// CalculateItemBalance derives paid/owed/settled for one item.
func CalculateItemBalance(item *models.DebtItem) ItemBalance {
	owed := item.AmountOwed()
	return ItemBalance{
		ItemID:      item.ID,
		TotalAmount: item.TotalAmount,
		AmountPaid:  item.AmountPaid,
		AmountOwed:  owed,
		IsSettled:   owed.Negligible(),
	}
}

// CalculateDebtorBalance computes a debtor's totals from its items.
// It is a pure function of the items passed in: calling it twice on the
// same stored state yields the same result. Totals that do not fit in an
// Amount yield money.ErrOverflow.
func CalculateDebtorBalance(debtorID string, items []*models.DebtItem) (DebtorBalance, error) {
	balance := DebtorBalance{
		DebtorID: debtorID,
		Items:    make([]ItemBalance, 0, len(items)),
	}
	var err error
	for _, item := range items {
		ib := CalculateItemBalance(item)
		if balance.TotalCharged, err = balance.TotalCharged.Add(ib.TotalAmount); err != nil {
			return DebtorBalance{}, fmt.Errorf("debtor %s charged total: %w", debtorID, err)
		}
		if balance.TotalPaid, err = balance.TotalPaid.Add(ib.AmountPaid); err != nil {
			return DebtorBalance{}, fmt.Errorf("debtor %s paid total: %w", debtorID, err)
		}
		balance.Items = append(balance.Items, ib)
	}
	if balance.TotalUnpaid, err = balance.TotalCharged.Add(-balance.TotalPaid); err != nil {
		return DebtorBalance{}, fmt.Errorf("debtor %s unpaid total: %w", debtorID, err)
	}
	return balance, nil
}

// TotalUnpaid returns charged - paid for aggregate rows.
func TotalUnpaid(summary *models.DebtorSummary) money.Amount {
	return summary.TotalCharged - summary.TotalPaid
}
