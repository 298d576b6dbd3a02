package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
)

// itemSelect reads items with the derived amount paid.
const itemSelect = `
	SELECT i.id, i.debtor_id, i.description, i.quantity, i.unit_price, i.total_amount,
		i.transaction_date, i.created_at,
		COALESCE((SELECT SUM(pa.amount_allocated) FROM payment_allocations pa WHERE pa.debt_item_id = i.id), 0)
	FROM debt_items i`

func scanItem(row interface{ Scan(...any) error }) (*models.DebtItem, error) {
	item := &models.DebtItem{}
	err := row.Scan(
		&item.ID, &item.DebtorID, &item.Description, &item.Quantity, &item.UnitPrice,
		&item.TotalAmount, &item.TransactionDate, &item.CreatedAt, &item.AmountPaid,
	)
	return item, err
}

// CreateDebtItem persists a new debt item.
func (s *SQLiteStore) CreateDebtItem(ctx context.Context, item *models.DebtItem) error {
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO debt_items (id, debtor_id, description, quantity, unit_price, total_amount, transaction_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.DebtorID, item.Description, item.Quantity, item.UnitPrice,
		item.TotalAmount, item.TransactionDate, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert debt item: %w", err)
	}
	return nil
}

// GetDebtItem retrieves an item whose debtor belongs to userID.
func (s *SQLiteStore) GetDebtItem(ctx context.Context, userID, itemID string) (*models.DebtItem, error) {
	row := s.q.QueryRowContext(ctx,
		itemSelect+`
		JOIN debtors d ON d.id = i.debtor_id
		WHERE i.id = ? AND d.user_id = ?`,
		itemID, userID,
	)
	item, err := scanItem(row)
	if err != nil {
		return nil, notFound(err, "debt item")
	}
	return item, nil
}

// ListDebtItems returns a debtor's items oldest first.
func (s *SQLiteStore) ListDebtItems(ctx context.Context, debtorID string) ([]*models.DebtItem, error) {
	rows, err := s.q.QueryContext(ctx,
		itemSelect+`
		WHERE i.debtor_id = ?
		ORDER BY i.transaction_date ASC, i.created_at ASC, i.id ASC`,
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

// DeleteDebtItem removes a single item.
func (s *SQLiteStore) DeleteDebtItem(ctx context.Context, itemID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM debt_items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete debt item: %w", err)
	}
	return requireAffected(res)
}

// ItemAllocatedTotal sums the allocations made to an item.
func (s *SQLiteStore) ItemAllocatedTotal(ctx context.Context, itemID string) (money.Amount, error) {
	var total money.Amount
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_allocated), 0) FROM payment_allocations WHERE debt_item_id = ?`,
		itemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum allocations: %w", err)
	}
	return total, nil
}
