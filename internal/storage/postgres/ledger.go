package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
)

const debtorColumns = `d.id, d.user_id, d.name, d.contact_info, d.created_at, d.updated_at`

func (s *PostgresStore) CreateDebtor(ctx context.Context, debtor *models.Debtor) error {
	if debtor.CreatedAt == 0 {
		debtor.CreatedAt = time.Now().Unix()
	}
	if debtor.UpdatedAt == 0 {
		debtor.UpdatedAt = debtor.CreatedAt
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO debtors (id, user_id, name, contact_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		debtor.ID, debtor.UserID, debtor.Name, debtor.ContactInfo, debtor.CreatedAt, debtor.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to insert debtor: %w", err)
	}
	return nil
}

func (s *PostgresStore) getDebtor(ctx context.Context, query, userID, debtorID string) (*models.Debtor, error) {
	d := &models.Debtor{}
	err := s.q.QueryRow(ctx, query, debtorID, userID).
		Scan(&d.ID, &d.UserID, &d.Name, &d.ContactInfo, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "debtor")
	}
	return d, nil
}

func (s *PostgresStore) GetDebtor(ctx context.Context, userID, debtorID string) (*models.Debtor, error) {
	return s.getDebtor(ctx,
		`SELECT `+debtorColumns+` FROM debtors d WHERE d.id = $1 AND d.user_id = $2`,
		userID, debtorID)
}

// LockDebtor takes a row lock on the debtor for the rest of the transaction.
// Outside a transaction the lock is released immediately.
func (s *PostgresStore) LockDebtor(ctx context.Context, userID, debtorID string) (*models.Debtor, error) {
	return s.getDebtor(ctx,
		`SELECT `+debtorColumns+` FROM debtors d WHERE d.id = $1 AND d.user_id = $2 FOR UPDATE`,
		userID, debtorID)
}

func (s *PostgresStore) ListDebtors(ctx context.Context, userID string) ([]*models.DebtorSummary, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+debtorColumns+`,
			COALESCE((SELECT SUM(i.total_amount) FROM debt_items i WHERE i.debtor_id = d.id), 0)::BIGINT,
			COALESCE((SELECT SUM(pa.amount_allocated)
				FROM payment_allocations pa
				JOIN debt_items i ON i.id = pa.debt_item_id
				WHERE i.debtor_id = d.id), 0)::BIGINT
		FROM debtors d
		WHERE d.user_id = $1
		ORDER BY d.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debtors: %w", err)
	}
	defer rows.Close()

	var out []*models.DebtorSummary
	for rows.Next() {
		ds := &models.DebtorSummary{}
		if err := rows.Scan(
			&ds.ID, &ds.UserID, &ds.Name, &ds.ContactInfo, &ds.CreatedAt, &ds.UpdatedAt,
			&ds.TotalCharged, &ds.TotalPaid,
		); err != nil {
			return nil, fmt.Errorf("failed to scan debtor: %w", err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debtors: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateDebtor(ctx context.Context, debtor *models.Debtor) error {
	debtor.UpdatedAt = time.Now().Unix()
	tag, err := s.q.Exec(ctx,
		`UPDATE debtors SET name = $1, contact_info = $2, updated_at = $3 WHERE id = $4 AND user_id = $5`,
		debtor.Name, debtor.ContactInfo, debtor.UpdatedAt, debtor.ID, debtor.UserID,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to update debtor: %w", err)
	}
	return requireAffected(tag)
}

func (s *PostgresStore) DeleteDebtor(ctx context.Context, userID, debtorID string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM debtors WHERE id = $1 AND user_id = $2`, debtorID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete debtor: %w", err)
	}
	return requireAffected(tag)
}

const itemSelect = `
	SELECT i.id, i.debtor_id, i.description, i.quantity, i.unit_price, i.total_amount,
		i.transaction_date, i.created_at,
		COALESCE((SELECT SUM(pa.amount_allocated) FROM payment_allocations pa WHERE pa.debt_item_id = i.id), 0)::BIGINT
	FROM debt_items i`

func scanItem(row pgx.Row) (*models.DebtItem, error) {
	item := &models.DebtItem{}
	err := row.Scan(
		&item.ID, &item.DebtorID, &item.Description, &item.Quantity, &item.UnitPrice,
		&item.TotalAmount, &item.TransactionDate, &item.CreatedAt, &item.AmountPaid,
	)
	return item, err
}

func (s *PostgresStore) CreateDebtItem(ctx context.Context, item *models.DebtItem) error {
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO debt_items (id, debtor_id, description, quantity, unit_price, total_amount, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.DebtorID, item.Description, item.Quantity, item.UnitPrice,
		item.TotalAmount, item.TransactionDate, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert debt item: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDebtItem(ctx context.Context, userID, itemID string) (*models.DebtItem, error) {
	item, err := scanItem(s.q.QueryRow(ctx,
		itemSelect+` JOIN debtors d ON d.id = i.debtor_id WHERE i.id = $1 AND d.user_id = $2`,
		itemID, userID,
	))
	if err != nil {
		return nil, notFound(err, "debt item")
	}
	return item, nil
}

func (s *PostgresStore) ListDebtItems(ctx context.Context, debtorID string) ([]*models.DebtItem, error) {
	rows, err := s.q.Query(ctx,
		itemSelect+` WHERE i.debtor_id = $1 ORDER BY i.transaction_date ASC, i.created_at ASC, i.id ASC`,
		debtorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debt items: %w", err)
	}
	defer rows.Close()

	var items []*models.DebtItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debt items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DeleteDebtItem(ctx context.Context, itemID string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM debt_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete debt item: %w", err)
	}
	return requireAffected(tag)
}

func (s *PostgresStore) ItemAllocatedTotal(ctx context.Context, itemID string) (money.Amount, error) {
	var total money.Amount
	err := s.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_allocated), 0)::BIGINT FROM payment_allocations WHERE debt_item_id = $1`,
		itemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum allocations: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO payments (id, user_id, debtor_id, amount, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		payment.ID, payment.UserID, payment.DebtorID, payment.Amount, payment.PaymentDate, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPayment(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	p := &models.Payment{}
	err := s.q.QueryRow(ctx, `
		SELECT p.id, p.user_id, p.debtor_id, p.amount, p.payment_date, p.created_at
		FROM payments p
		JOIN debtors d ON d.id = p.debtor_id
		WHERE p.id = $1 AND d.user_id = $2`,
		paymentID, userID,
	).Scan(&p.ID, &p.UserID, &p.DebtorID, &p.Amount, &p.PaymentDate, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "payment")
	}
	return p, nil
}

func (s *PostgresStore) ListPayments(ctx context.Context, debtorID string) ([]*models.Payment, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, user_id, debtor_id, amount, payment_date, created_at
		FROM payments
		WHERE debtor_id = $1
		ORDER BY payment_date DESC, created_at DESC, id DESC`,
		debtorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	var payments []*models.Payment
	byID := make(map[string]*models.Payment)
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.DebtorID, &p.Amount, &p.PaymentDate, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
		byID[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	if len(payments) == 0 {
		return payments, nil
	}

	allocRows, err := s.q.Query(ctx, `
		SELECT pa.payment_id, pa.debt_item_id, pa.amount_allocated
		FROM payment_allocations pa
		JOIN payments p ON p.id = pa.payment_id
		JOIN debt_items i ON i.id = pa.debt_item_id
		WHERE p.debtor_id = $1
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

func (s *PostgresStore) DeletePayment(ctx context.Context, paymentID string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireAffected(tag)
}

func (s *PostgresStore) UpdatePaymentAmount(ctx context.Context, paymentID string, amount money.Amount) error {
	tag, err := s.q.Exec(ctx, `UPDATE payments SET amount = $1 WHERE id = $2`, amount, paymentID)
	if err != nil {
		return fmt.Errorf("failed to update payment amount: %w", err)
	}
	return requireAffected(tag)
}

func (s *PostgresStore) CreateAllocation(ctx context.Context, alloc models.PaymentAllocation) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO payment_allocations (payment_id, debt_item_id, amount_allocated) VALUES ($1, $2, $3)`,
		alloc.PaymentID, alloc.DebtItemID, alloc.AmountAllocated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAllocationsByItem(ctx context.Context, itemID string) ([]models.PaymentAllocation, error) {
	rows, err := s.q.Query(ctx,
		`SELECT payment_id, debt_item_id, amount_allocated FROM payment_allocations WHERE debt_item_id = $1 ORDER BY payment_id`,
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

func (s *PostgresStore) DeleteAllocationsByItem(ctx context.Context, itemID string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM payment_allocations WHERE debt_item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountAllocationsByPayment(ctx context.Context, paymentID string) (int, error) {
	var n int
	err := s.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_allocations WHERE payment_id = $1`, paymentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count allocations: %w", err)
	}
	return n, nil
}
