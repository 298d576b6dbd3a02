package calculator

import (
	"sort"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
)

// Allocation is one planned slice of a payment applied to one item.
type Allocation struct {
	DebtItemID    string
	Amount        money.Amount
	BalanceBefore money.Amount // owed before this allocation
	BalanceAfter  money.Amount // owed after this allocation
}

// AllocationResult is the outcome of planning a payment.
type AllocationResult struct {
	Allocations    []Allocation
	TotalAllocated money.Amount
	// Remaining is the part of the payment that found no open item.
	Remaining money.Amount
}

// OpenItems returns the items whose owed amount exceeds the tolerance,
// oldest first. Ties on TransactionDate fall back to creation time, then id.
func OpenItems(items []*models.DebtItem) []*models.DebtItem {
	open := make([]*models.DebtItem, 0, len(items))
	for _, item := range items {
		if !item.IsSettled() {
			open = append(open, item)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		if a.TransactionDate != b.TransactionDate {
			return a.TransactionDate < b.TransactionDate
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	return open
}

// PlanAllocation distributes amount across the open items, oldest first.
//
// Algorithm:
//   - Keep remaining = amount
//   - For each open item: take = min(remaining, owed); remaining -= take
//   - Stop once remaining is within tolerance or items run out
//
// Returns ErrNoOpenDebts when nothing could be allocated. Any amount beyond
// the total owed is reported in Remaining and is not allocated.
func PlanAllocation(amount money.Amount, items []*models.DebtItem) (AllocationResult, error) {
	if amount <= 0 {
		return AllocationResult{}, models.Invalid("amount", "must be greater than zero")
	}

	result := AllocationResult{Remaining: amount}
	for _, item := range OpenItems(items) {
		owed := item.AmountOwed()
		take := money.Min(result.Remaining, owed)
		if take <= 0 {
			continue
		}

		result.Allocations = append(result.Allocations, Allocation{
			DebtItemID:    item.ID,
			Amount:        take,
			BalanceBefore: owed,
			BalanceAfter:  owed - take,
		})
		result.TotalAllocated += take
		result.Remaining -= take

		if result.Remaining.Negligible() {
			break
		}
	}

	if len(result.Allocations) == 0 {
		return AllocationResult{}, models.ErrNoOpenDebts
	}
	return result, nil
}
