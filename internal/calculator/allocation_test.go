package calculator

import (
	"errors"
	"testing"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
)

func item(id, date, total, paid string) *models.DebtItem {
	return &models.DebtItem{
		ID:              id,
		TransactionDate: date,
		TotalAmount:     money.MustParse(total),
		AmountPaid:      money.MustParse(paid),
	}
}

func TestPlanAllocation(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		items        []*models.DebtItem
		wantErr      error
		validateFunc func(t *testing.T, r AllocationResult)
	}{
		{
			name:   "oldest item settled first, remainder to next",
			amount: "120",
			items: []*models.DebtItem{
				item("item_b", "2024-01-05", "50", "0"),
				item("item_a", "2024-01-01", "100", "0"),
			},
			validateFunc: func(t *testing.T, r AllocationResult) {
				// A: 100 of 100, B: 20 of 50
				if len(r.Allocations) != 2 {
					t.Fatalf("expected 2 allocations, got %d", len(r.Allocations))
				}
				if r.Allocations[0].DebtItemID != "item_a" || r.Allocations[0].Amount != money.MustParse("100") {
					t.Errorf("first allocation = %+v, want 100 to item_a", r.Allocations[0])
				}
				if r.Allocations[1].DebtItemID != "item_b" || r.Allocations[1].Amount != money.MustParse("20") {
					t.Errorf("second allocation = %+v, want 20 to item_b", r.Allocations[1])
				}
				if r.Allocations[1].BalanceAfter != money.MustParse("30") {
					t.Errorf("item_b balance after = %s, want 30", r.Allocations[1].BalanceAfter)
				}
				if r.TotalAllocated != money.MustParse("120") || r.Remaining != 0 {
					t.Errorf("total=%s remaining=%s", r.TotalAllocated, r.Remaining)
				}
			},
		},
		{
			name:   "partially paid item only receives what it still owes",
			amount: "40",
			items: []*models.DebtItem{
				item("item_a", "2024-01-01", "100", "75"),
				item("item_b", "2024-02-01", "50", "0"),
			},
			validateFunc: func(t *testing.T, r AllocationResult) {
				if r.Allocations[0].Amount != money.MustParse("25") {
					t.Errorf("item_a got %s, want 25", r.Allocations[0].Amount)
				}
				if r.Allocations[1].Amount != money.MustParse("15") {
					t.Errorf("item_b got %s, want 15", r.Allocations[1].Amount)
				}
			},
		},
		{
			name:   "settled items are skipped",
			amount: "10",
			items: []*models.DebtItem{
				item("item_a", "2024-01-01", "100", "100"),
				item("item_b", "2024-01-02", "20", "19.995"),
				item("item_c", "2024-01-03", "20", "0"),
			},
			validateFunc: func(t *testing.T, r AllocationResult) {
				if len(r.Allocations) != 1 || r.Allocations[0].DebtItemID != "item_c" {
					t.Errorf("expected single allocation to item_c, got %+v", r.Allocations)
				}
			},
		},
		{
			name:   "excess beyond total owed is not allocated",
			amount: "500",
			items: []*models.DebtItem{
				item("item_a", "2024-01-01", "100", "0"),
				item("item_b", "2024-01-05", "50", "0"),
			},
			validateFunc: func(t *testing.T, r AllocationResult) {
				if r.TotalAllocated != money.MustParse("150") {
					t.Errorf("total allocated = %s, want 150", r.TotalAllocated)
				}
				if r.Remaining != money.MustParse("350") {
					t.Errorf("remaining = %s, want 350", r.Remaining)
				}
			},
		},
		{
			name:   "same date falls back to creation order",
			amount: "10",
			items: []*models.DebtItem{
				{ID: "item_2", TransactionDate: "2024-01-01", CreatedAt: 2, TotalAmount: money.MustParse("10")},
				{ID: "item_1", TransactionDate: "2024-01-01", CreatedAt: 1, TotalAmount: money.MustParse("10")},
			},
			validateFunc: func(t *testing.T, r AllocationResult) {
				if r.Allocations[0].DebtItemID != "item_1" {
					t.Errorf("expected item_1 first, got %s", r.Allocations[0].DebtItemID)
				}
			},
		},
		{
			name:    "no open items rejects the payment",
			amount:  "10",
			items:   []*models.DebtItem{item("item_a", "2024-01-01", "100", "100")},
			wantErr: models.ErrNoOpenDebts,
		},
		{
			name:    "no items at all rejects the payment",
			amount:  "10",
			wantErr: models.ErrNoOpenDebts,
		},
		{
			name:    "zero amount is invalid",
			amount:  "0",
			items:   []*models.DebtItem{item("item_a", "2024-01-01", "100", "0")},
			wantErr: models.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := PlanAllocation(money.MustParse(tt.amount), tt.items)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("PlanAllocation() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlanAllocation() unexpected error: %v", err)
			}
			tt.validateFunc(t, result)
		})
	}
}

// Every planned allocation must sum to exactly the allocated total, and no
// item may receive more than it owes.
func TestPlanAllocation_Invariants(t *testing.T) {
	items := []*models.DebtItem{
		item("item_a", "2024-03-01", "10.3333", "0"),
		item("item_b", "2024-01-01", "0.07", "0"),
		item("item_c", "2024-02-01", "99.99", "12.5"),
	}
	owed := map[string]money.Amount{}
	for _, it := range items {
		owed[it.ID] = it.AmountOwed()
	}

	for _, amount := range []string{"0.02", "0.07", "1", "50.0001", "97.8033", "1000"} {
		r, err := PlanAllocation(money.MustParse(amount), items)
		if err != nil {
			t.Fatalf("amount %s: %v", amount, err)
		}
		var sum money.Amount
		for _, a := range r.Allocations {
			sum += a.Amount
			if a.Amount > owed[a.DebtItemID] {
				t.Errorf("amount %s: item %s over-allocated: %s > %s", amount, a.DebtItemID, a.Amount, owed[a.DebtItemID])
			}
		}
		if sum != r.TotalAllocated {
			t.Errorf("amount %s: allocations sum %s != total %s", amount, sum, r.TotalAllocated)
		}
		if r.TotalAllocated+r.Remaining != money.MustParse(amount) {
			t.Errorf("amount %s: allocated %s + remaining %s does not add up", amount, r.TotalAllocated, r.Remaining)
		}
	}
}
