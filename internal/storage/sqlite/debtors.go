package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/debtbook/internal/models"
)

const debtorColumns = `d.id, d.user_id, d.name, d.contact_info, d.created_at, d.updated_at`

// CreateDebtor persists a new debtor.
func (s *SQLiteStore) CreateDebtor(ctx context.Context, debtor *models.Debtor) error {
	if debtor.CreatedAt == 0 {
		debtor.CreatedAt = time.Now().Unix()
	}
	if debtor.UpdatedAt == 0 {
		debtor.UpdatedAt = debtor.CreatedAt
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO debtors (id, user_id, name, contact_info, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
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

// GetDebtor retrieves a debtor owned by userID.
func (s *SQLiteStore) GetDebtor(ctx context.Context, userID, debtorID string) (*models.Debtor, error) {
	d := &models.Debtor{}
	err := s.q.QueryRowContext(ctx,
		`SELECT `+debtorColumns+` FROM debtors d WHERE d.id = ? AND d.user_id = ?`,
		debtorID, userID,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.ContactInfo, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "debtor")
	}
	return d, nil
}

// LockDebtor is GetDebtor. SQLite transactions already hold the database
// write lock from BEGIN IMMEDIATE, which covers every debtor.
func (s *SQLiteStore) LockDebtor(ctx context.Context, userID, debtorID string) (*models.Debtor, error) {
	return s.GetDebtor(ctx, userID, debtorID)
}

// ListDebtors returns the owner's debtors with charged and paid totals.
func (s *SQLiteStore) ListDebtors(ctx context.Context, userID string) ([]*models.DebtorSummary, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+debtorColumns+`,
			COALESCE((SELECT SUM(i.total_amount) FROM debt_items i WHERE i.debtor_id = d.id), 0),
			COALESCE((SELECT SUM(pa.amount_allocated)
				FROM payment_allocations pa
				JOIN debt_items i ON i.id = pa.debt_item_id
				WHERE i.debtor_id = d.id), 0)
		FROM debtors d
		WHERE d.user_id = ?
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

// UpdateDebtor renames a debtor and replaces its contact info.
func (s *SQLiteStore) UpdateDebtor(ctx context.Context, debtor *models.Debtor) error {
	debtor.UpdatedAt = time.Now().Unix()
	res, err := s.q.ExecContext(ctx,
		`UPDATE debtors SET name = ?, contact_info = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		debtor.Name, debtor.ContactInfo, debtor.UpdatedAt, debtor.ID, debtor.UserID,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to update debtor: %w", err)
	}
	return requireAffected(res)
}

// DeleteDebtor removes a debtor. Items, payments and allocations go with it.
func (s *SQLiteStore) DeleteDebtor(ctx context.Context, userID, debtorID string) error {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM debtors WHERE id = ? AND user_id = ?`, debtorID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete debtor: %w", err)
	}
	return requireAffected(res)
}
