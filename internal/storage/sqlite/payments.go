package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
)

// CreatePayment persists the payment row. Allocations are written
// separately with CreateAllocation in the same transaction.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO payments (id, user_id, debtor_id, amount, payment_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.UserID, payment.DebtorID, payment.Amount, payment.PaymentDate, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment whose debtor belongs to userID.
func (s *SQLiteStore) GetPayment(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	p := &models.Payment{}
	err := s.q.QueryRowContext(ctx, `
		SELECT p.id, p.user_id, p.debtor_id, p.amount, p.payment_date, p.created_at
		FROM payments p
		JOIN debtors d ON d.id = p.debtor_id
		WHERE p.id = ? AND d.user_id = ?`,
		paymentID, userID,
	).Scan(&p.ID, &p.UserID, &p.DebtorID, &p.Amount, &p.PaymentDate, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "payment")
	}
	return p, nil
}

// ListPayments returns a debtor's payments newest first with allocations.
func (s *SQLiteStore) ListPayments(ctx context.Context, debtorID string) ([]*models.Payment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, debtor_id, amount, payment_date, created_at
		FROM payments
		WHERE debtor_id = ?
		ORDER BY payment_date DESC, created_at DESC, id DESC`,
		debtorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	byID := make(map[string]*models.Payment)
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.DebtorID, &p.Amount, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	rows.Close()

	if len(payments) == 0 {
		return payments, nil
	}

	allocRows, err := s.q.QueryContext(ctx, `
		SELECT pa.payment_id, pa.debt_item_id, pa.amount_allocated
		FROM payment_allocations pa
		JOIN payments p ON p.id = pa.payment_id
		JOIN debt_items i ON i.id = pa.debt_item_id
		WHERE p.debtor_id = ?
		ORDER BY i.transaction_date ASC, i.created_at ASC, i.id ASC`,
		debtorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer allocRows.Close()

	for allocRows.Next() {
		var a models.PaymentAllocation
		if err := allocRows.Scan(&a.PaymentID, &a.DebtItemID, &a.AmountAllocated); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		if p, ok := byID[a.PaymentID]; ok {
			p.Allocations = append(p.Allocations, a)
		}
	}
	if err := allocRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}

	return payments, nil
}

// DeletePayment removes a payment; its allocations cascade.
func (s *SQLiteStore) DeletePayment(ctx context.Context, paymentID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireAffected(res)
}

// UpdatePaymentAmount overwrites the recorded amount of a payment.
func (s *SQLiteStore) UpdatePaymentAmount(ctx context.Context, paymentID string, amount money.Amount) error {
	res, err := s.q.ExecContext(ctx, `UPDATE payments SET amount = ? WHERE id = ?`, amount, paymentID)
	if err != nil {
		return fmt.Errorf("failed to update payment amount: %w", err)
	}
	return requireAffected(res)
}

// CreateAllocation records one slice of a payment against one item.
func (s *SQLiteStore) CreateAllocation(ctx context.Context, alloc models.PaymentAllocation) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO payment_allocations (payment_id, debt_item_id, amount_allocated) VALUES (?, ?, ?)`,
		alloc.PaymentID, alloc.DebtItemID, alloc.AmountAllocated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}
	return nil
}

// ListAllocationsByItem returns every allocation that references an item.
func (s *SQLiteStore) ListAllocationsByItem(ctx context.Context, itemID string) ([]models.PaymentAllocation, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT payment_id, debt_item_id, amount_allocated FROM payment_allocations WHERE debt_item_id = ? ORDER BY payment_id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var out []models.PaymentAllocation
	for rows.Next() {
		var a models.PaymentAllocation
		if err := rows.Scan(&a.PaymentID, &a.DebtItemID, &a.AmountAllocated); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}
	return out, nil
}

// DeleteAllocationsByItem removes every allocation that references an item.
func (s *SQLiteStore) DeleteAllocationsByItem(ctx context.Context, itemID string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM payment_allocations WHERE debt_item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	return nil
}

// CountAllocationsByPayment counts the allocations left on a payment.
func (s *SQLiteStore) CountAllocationsByPayment(ctx context.Context, paymentID string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payment_allocations WHERE payment_id = ?`, paymentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count allocations: %w", err)
	}
	return n, nil
}
