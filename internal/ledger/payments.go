package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/debtbook/internal/calculator"
	"github.com/mmynk/debtbook/internal/ids"
	"github.com/mmynk/debtbook/internal/metrics"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
	"github.com/mmynk/debtbook/internal/storage"
)

// NewPayment is the input of AllocatePayment.
type NewPayment struct {
	DebtorID    string
	Amount      money.Amount
	PaymentDate string
}

// Receipt is the outcome of a successful allocation.
type Receipt struct {
	// Payment is the persisted payment. Its Amount is what was allocated.
	Payment *models.Payment
	// Allocations lists the items paid, oldest first.
	Allocations []calculator.Allocation
	// Unallocated is the part of the requested amount that exceeded what
	// the debtor owed. It is not recorded anywhere.
	Unallocated money.Amount
}

// AllocatePayment records a payment and spreads it over the debtor's open
// items, oldest transaction date first.
//
// The debtor is locked, open balances are read and planned, and every
// allocation is re-checked against the item's allocated total before it is
// written, all in one transaction. A debtor with nothing open rejects the
// payment with models.ErrNoOpenDebts. Anything beyond the total owed is
// returned as Unallocated and the payment is recorded at the allocated sum.
func (s *Service) AllocatePayment(ctx context.Context, userID string, in NewPayment) (*Receipt, error) {
	if err := s.checkPayment(userID, in); err != nil {
		s.metrics.PaymentRejected(metrics.ReasonInvalid)
		s.logger.Warn("payment rejected", "user_id", userID, "debtor_id", in.DebtorID, "error", err)
		return nil, err
	}

	var (
		receipt *Receipt
		err     error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		receipt, err = s.allocateOnce(ctx, userID, in)
		if !errors.Is(err, models.ErrLedgerConflict) {
			break
		}
		s.logger.Warn("allocation conflict, retrying",
			"user_id", userID, "debtor_id", in.DebtorID, "attempt", attempt)
	}
	if err != nil {
		s.metrics.PaymentRejected(rejectionReason(err))
		s.logFailure("payment rejected", err,
			"user_id", userID, "debtor_id", in.DebtorID, "amount", in.Amount.String())
		return nil, err
	}

	s.metrics.PaymentAllocated(receipt.Payment.Amount)
	s.logger.Info("payment allocated",
		"user_id", userID,
		"debtor_id", in.DebtorID,
		"payment_id", receipt.Payment.ID,
		"amount", receipt.Payment.Amount.String(),
		"allocations", len(receipt.Allocations),
		"unallocated", receipt.Unallocated.String(),
	)
	return receipt, nil
}

func (s *Service) checkPayment(userID string, in NewPayment) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := checkID("debtorId", in.DebtorID, ids.PrefixDebtor); err != nil {
		return err
	}
	if in.Amount <= 0 {
		return models.Invalid("amount", "must be greater than zero")
	}
	if in.Amount > money.MaxAmount {
		return models.Invalid("amount", "must not exceed %s", money.MaxAmount)
	}
	return checkDate("paymentDate", in.PaymentDate)
}

func (s *Service) allocateOnce(ctx context.Context, userID string, in NewPayment) (*Receipt, error) {
	var receipt *Receipt
	err := s.store.WithTx(ctx, func(tx storage.Ledger) error {
		if _, err := tx.LockDebtor(ctx, userID, in.DebtorID); err != nil {
			return err
		}
		items, err := tx.ListDebtItems(ctx, in.DebtorID)
		if err != nil {
			return err
		}
		plan, err := calculator.PlanAllocation(in.Amount, items)
		if err != nil {
			return err
		}

		totals := make(map[string]money.Amount, len(items))
		for _, item := range items {
			totals[item.ID] = item.TotalAmount
		}

		payment := &models.Payment{
			ID:          ids.NewPaymentID(),
			UserID:      userID,
			DebtorID:    in.DebtorID,
			Amount:      plan.TotalAllocated,
			PaymentDate: in.PaymentDate,
			CreatedAt:   s.now().UnixMilli(),
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}

		for _, a := range plan.Allocations {
			paid, err := tx.ItemAllocatedTotal(ctx, a.DebtItemID)
			if err != nil {
				return err
			}
			if paid+a.Amount > totals[a.DebtItemID] {
				return fmt.Errorf("%w: item %s", models.ErrLedgerConflict, a.DebtItemID)
			}
			alloc := models.PaymentAllocation{
				PaymentID:       payment.ID,
				DebtItemID:      a.DebtItemID,
				AmountAllocated: a.Amount,
			}
			if err := tx.CreateAllocation(ctx, alloc); err != nil {
				return err
			}
			payment.Allocations = append(payment.Allocations, alloc)
		}

		receipt = &Receipt{
			Payment:     payment,
			Allocations: plan.Allocations,
			Unallocated: plan.Remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return metrics.ReasonInvalid
	case errors.Is(err, models.ErrNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, models.ErrNoOpenDebts):
		return metrics.ReasonNoDebts
	case errors.Is(err, models.ErrLedgerConflict):
		return metrics.ReasonConflict
	default:
		return metrics.ReasonInternal
	}
}

// ListPayments returns a debtor's payments newest first with allocations.
func (s *Service) ListPayments(ctx context.Context, userID, debtorID string) ([]*models.Payment, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	if err := checkID("debtorId", debtorID, ids.PrefixDebtor); err != nil {
		return nil, err
	}

	var payments []*models.Payment
	err := s.store.WithTx(ctx, func(tx storage.Ledger) error {
		if _, err := tx.GetDebtor(ctx, userID, debtorID); err != nil {
			return err
		}
		var err error
		payments, err = tx.ListPayments(ctx, debtorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// DeletePayment removes a payment and all of its allocations. The items it
// paid become open again by the allocated amounts.
func (s *Service) DeletePayment(ctx context.Context, userID, paymentID string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := checkID("paymentId", paymentID, ids.PrefixPayment); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx storage.Ledger) error {
		payment, err := tx.GetPayment(ctx, userID, paymentID)
		if err != nil {
			return err
		}
		if _, err := tx.LockDebtor(ctx, userID, payment.DebtorID); err != nil {
			return err
		}
		return tx.DeletePayment(ctx, paymentID)
	})
	if err != nil {
		s.logFailure("delete payment failed", err, "user_id", userID, "payment_id", paymentID)
		return err
	}

	s.metrics.Deleted("payment")
	s.logger.Info("payment deleted", "user_id", userID, "payment_id", paymentID)
	return nil
}
