package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/debtbook/internal/calculator"
	"github.com/mmynk/debtbook/internal/ids"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/storage"
)

// ListDebtors returns the caller's debtors ordered by name, with totals.
func (s *Service) ListDebtors(ctx context.Context, userID string) ([]*models.DebtorSummary, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	debtors, err := s.store.ListDebtors(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list debtors: %w", err)
	}
	return debtors, nil
}

// CreateDebtor adds a debtor. Names are unique per account.
func (s *Service) CreateDebtor(ctx context.Context, userID, name, contactInfo string) (*models.Debtor, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Invalid("name", "is required")
	}

	now := s.now().Unix()
	debtor := &models.Debtor{
		ID:          ids.NewDebtorID(),
		UserID:      userID,
		Name:        name,
		ContactInfo: strings.TrimSpace(contactInfo),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateDebtor(ctx, debtor); err != nil {
		s.logFailure("create debtor failed", err, "user_id", userID, "name", name)
		return nil, err
	}

	s.logger.Info("debtor created", "user_id", userID, "debtor_id", debtor.ID)
	return debtor, nil
}

// UpdateDebtor renames a debtor and replaces its contact info.
func (s *Service) UpdateDebtor(ctx context.Context, userID, debtorID, name, contactInfo string) (*models.Debtor, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	if err := checkID("debtorId", debtorID, ids.PrefixDebtor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Invalid("name", "is required")
	}

	var updated *models.Debtor
	err := s.store.WithTx(ctx, func(tx storage.Ledger) error {
		debtor, err := tx.LockDebtor(ctx, userID, debtorID)
		if err != nil {
			return err
		}
		debtor.Name = name
		debtor.ContactInfo = strings.TrimSpace(contactInfo)
		if err := tx.UpdateDebtor(ctx, debtor); err != nil {
			return err
		}
		updated = debtor
		return nil
	})
	if err != nil {
		s.logFailure("update debtor failed", err, "user_id", userID, "debtor_id", debtorID)
		return nil, err
	}
	return updated, nil
}

// GetDebtorBalance computes a debtor's balance from its items and their
// allocations. Nothing is cached; two calls without writes in between agree.
func (s *Service) GetDebtorBalance(ctx context.Context, userID, debtorID string) (calculator.DebtorBalance, error) {
	if err := checkUser(userID); err != nil {
		return calculator.DebtorBalance{}, err
	}
	if err := checkID("debtorId", debtorID, ids.PrefixDebtor); err != nil {
		return calculator.DebtorBalance{}, err
	}

	var balance calculator.DebtorBalance
	err := s.store.WithTx(ctx, func(tx storage.Ledger) error {
		if _, err := tx.GetDebtor(ctx, userID, debtorID); err != nil {
			return err
		}
		items, err := tx.ListDebtItems(ctx, debtorID)
		if err != nil {
			return err
		}
		balance, err = calculator.CalculateDebtorBalance(debtorID, items)
		return err
	})
	if err != nil {
		return calculator.DebtorBalance{}, err
	}
	return balance, nil
}

// DeleteDebtor removes a debtor together with its items, payments and
// allocations. A debtor who still owes more than the tolerance cannot be
// deleted.
func (s *Service) DeleteDebtor(ctx context.Context, userID, debtorID string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := checkID("debtorId", debtorID, ids.PrefixDebtor); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx storage.Ledger) error {
		if _, err := tx.LockDebtor(ctx, userID, debtorID); err != nil {
			return err
		}
		items, err := tx.ListDebtItems(ctx, debtorID)
		if err != nil {
			return err
		}
		balance, err := calculator.CalculateDebtorBalance(debtorID, items)
		if err != nil {
			return err
		}
		if balance.TotalUnpaid < 0 {
			return fmt.Errorf("%w: debtor %s (%s unpaid)", calculator.ErrNegativeBalance, debtorID, balance.TotalUnpaid)
		}
		if !balance.Settled() {
			return fmt.Errorf("%w (%s unpaid)", models.ErrOutstandingBalance, balance.TotalUnpaid)
		}
		return tx.DeleteDebtor(ctx, userID, debtorID)
	})
	if err != nil {
		s.logFailure("delete debtor failed", err, "user_id", userID, "debtor_id", debtorID)
		return err
	}

	s.metrics.Deleted("debtor")
	s.logger.Info("debtor deleted", "user_id", userID, "debtor_id", debtorID)
	return nil
}
