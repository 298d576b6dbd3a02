package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/mmynk/debtbook/internal/calculator"
	"github.com/mmynk/debtbook/internal/ids"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
	"github.com/mmynk/debtbook/internal/storage"
)

// NewDebtItem is the input of CreateDebtItem.
type NewDebtItem struct {
	DebtorID        string
	Description     string
	Quantity        int64 // zero means 1
	UnitPrice       money.Amount
	TransactionDate string
}

// CreateDebtItem records a charge against a debtor. The total is
// quantity * unit price and never changes afterwards.
func (s *Service) CreateDebtItem(ctx context.Context, userID string, in NewDebtItem) (*models.DebtItem, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	if err := checkID("debtorId", in.DebtorID, ids.PrefixDebtor); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, models.Invalid("description", "is required")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, models.Invalid("quantity", "must be a positive integer")
	}
	if in.UnitPrice <= 0 {
		return nil, models.Invalid("unitPrice", "must be greater than zero")
	}
	if in.UnitPrice > money.MaxAmount {
		return nil, models.Invalid("unitPrice", "must not exceed %s", money.MaxAmount)
	}
	if err := checkDate("transactionDate", in.TransactionDate); err != nil {
		return nil, err
	}
	total, err := in.UnitPrice.Mul(qty)
	if err != nil {
		return nil, models.Invalid("unitPrice", "quantity * unitPrice is too large")
	}

	item := &models.DebtItem{
		ID:              ids.NewDebtItemID(),
		DebtorID:        in.DebtorID,
		Description:     description,
		Quantity:        qty,
		UnitPrice:       in.UnitPrice,
		TotalAmount:     total,
		TransactionDate: in.TransactionDate,
		CreatedAt:       s.now().UnixMilli(),
	}

	err = s.store.WithTx(ctx, func(tx storage.Ledger) error {
		if _, err := tx.LockDebtor(ctx, userID, in.DebtorID); err != nil {
			return err
		}
		existing, err := tx.ListDebtItems(ctx, in.DebtorID)
		if err != nil {
			return err
		}
		if _, err := calculator.CalculateDebtorBalance(in.DebtorID, append(existing, item)); err != nil {
			return models.Invalid("unitPrice", "debtor total would be too large")
		}
		return tx.CreateDebtItem(ctx, item)
	})
	if err != nil {
		s.logFailure("create debt item failed", err, "user_id", userID, "debtor_id", in.DebtorID)
		return nil, err
	}

	s.logger.Info("debt item created",
		"user_id", userID,
		"debtor_id", in.DebtorID,
		"item_id", item.ID,
		"total", item.TotalAmount.String(),
	)
	return item, nil
}

// ListDebtItems returns a debtor's items newest first, with amounts paid.
func (s *Service) ListDebtItems(ctx context.Context, userID, debtorID string) ([]*models.DebtItem, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	if err := checkID("debtorId", debtorID, ids.PrefixDebtor); err != nil {
		return nil, err
	}

	var items []*models.DebtItem
	err := s.store.WithTx(ctx, func(tx storage.Ledger) error {
		if _, err := tx.GetDebtor(ctx, userID, debtorID); err != nil {
			return err
		}
		var err error
		items, err = tx.ListDebtItems(ctx, debtorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// ItemDeletion describes what DeleteDebtItem changed besides the item.
type ItemDeletion struct {
	// RemovedAllocations is the number of allocations removed with the item.
	RemovedAllocations int
	// AdjustedPayments are payments whose amount shrank by the removed allocation.
	AdjustedPayments []string
	// DeletedPayments are payments left without allocations and removed.
	DeletedPayments []string
}

// DeleteDebtItem removes a debt item.
//
// Under PolicyStrict an item with allocations is refused with
// models.ErrHasPayments. Under PolicyCascade its allocations are removed;
// each affected payment is reduced by the removed allocation so its amount
// still equals the sum of its allocations, and a payment with no
// allocations left is deleted.
func (s *Service) DeleteDebtItem(ctx context.Context, userID, itemID string) (ItemDeletion, error) {
	var result ItemDeletion
	if err := checkUser(userID); err != nil {
		return result, err
	}
	if err := checkID("itemId", itemID, ids.PrefixDebtItem); err != nil {
		return result, err
	}

	err := s.store.WithTx(ctx, func(tx storage.Ledger) error {
		result = ItemDeletion{}

		item, err := tx.GetDebtItem(ctx, userID, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.LockDebtor(ctx, userID, item.DebtorID); err != nil {
			return err
		}

		allocs, err := tx.ListAllocationsByItem(ctx, itemID)
		if err != nil {
			return err
		}
		if len(allocs) > 0 && s.policy == PolicyStrict {
			return models.ErrHasPayments
		}

		if len(allocs) > 0 {
			if err := tx.DeleteAllocationsByItem(ctx, itemID); err != nil {
				return err
			}
			for _, a := range allocs {
				if err := s.settleAffectedPayment(ctx, tx, userID, a, &result); err != nil {
					return err
				}
			}
			result.RemovedAllocations = len(allocs)
		}

		return tx.DeleteDebtItem(ctx, itemID)
	})
	if err != nil {
		s.logFailure("delete debt item failed", err, "user_id", userID, "item_id", itemID)
		return ItemDeletion{}, err
	}

	s.metrics.Deleted("debt_item")
	s.metrics.OrphansDeleted(len(result.DeletedPayments))
	s.logger.Info("debt item deleted",
		"user_id", userID,
		"item_id", itemID,
		"allocations_removed", result.RemovedAllocations,
		"payments_adjusted", len(result.AdjustedPayments),
		"orphan_payments_deleted", len(result.DeletedPayments),
	)
	return result, nil
}

// settleAffectedPayment fixes up a payment after one of its allocations was
// removed: delete it when nothing is left, otherwise shrink its amount.
func (s *Service) settleAffectedPayment(ctx context.Context, tx storage.Ledger, userID string, removed models.PaymentAllocation, result *ItemDeletion) error {
	remaining, err := tx.CountAllocationsByPayment(ctx, removed.PaymentID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := tx.DeletePayment(ctx, removed.PaymentID); err != nil {
			return err
		}
		result.DeletedPayments = append(result.DeletedPayments, removed.PaymentID)
		return nil
	}

	payment, err := tx.GetPayment(ctx, userID, removed.PaymentID)
	if err != nil {
		return err
	}
	newAmount := payment.Amount - removed.AmountAllocated
	if newAmount <= 0 {
		return errors.New("payment amount does not cover its allocations")
	}
	if err := tx.UpdatePaymentAmount(ctx, payment.ID, newAmount); err != nil {
		return err
	}
	result.AdjustedPayments = append(result.AdjustedPayments, payment.ID)
	return nil
}
