package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/debtbook/internal/ids"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
	"github.com/mmynk/debtbook/internal/storage"
)

// newTestStore connects to DEBTBOOK_TEST_DATABASE_URL or skips.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("DEBTBOOK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("DEBTBOOK_TEST_DATABASE_URL not set")
	}
	store, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStore_Ledger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := "pg-" + ids.NewDebtorID()

	debtor := &models.Debtor{ID: ids.NewDebtorID(), UserID: userID, Name: "Dana"}
	require.NoError(t, store.CreateDebtor(ctx, debtor))
	t.Cleanup(func() { store.DeleteDebtor(ctx, userID, debtor.ID) })

	assert.ErrorIs(t, store.CreateDebtor(ctx, &models.Debtor{ID: ids.NewDebtorID(), UserID: userID, Name: "Dana"}),
		models.ErrDuplicateName)

	item := &models.DebtItem{
		ID: ids.NewDebtItemID(), DebtorID: debtor.ID, Description: "Rent",
		Quantity: 1, UnitPrice: money.MustParse("100"), TotalAmount: money.MustParse("100"),
		TransactionDate: "2024-01-01",
	}
	require.NoError(t, store.CreateDebtItem(ctx, item))

	payment := &models.Payment{
		ID: ids.NewPaymentID(), UserID: userID, DebtorID: debtor.ID,
		Amount: money.MustParse("40"), PaymentDate: "2024-02-01",
	}
	err := store.WithTx(ctx, func(tx storage.Ledger) error {
		if _, err := tx.LockDebtor(ctx, userID, debtor.ID); err != nil {
			return err
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
		return tx.CreateAllocation(ctx, models.PaymentAllocation{
			PaymentID: payment.ID, DebtItemID: item.ID, AmountAllocated: payment.Amount,
		})
	})
	require.NoError(t, err)

	got, err := store.GetDebtItem(ctx, userID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("40"), got.AmountPaid)

	list, err := store.ListDebtors(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, money.MustParse("100"), list[0].TotalCharged)
	assert.Equal(t, money.MustParse("40"), list[0].TotalPaid)

	payments, err := store.ListPayments(ctx, debtor.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Len(t, payments[0].Allocations, 1)

	_, err = store.GetDebtor(ctx, "someone-else", debtor.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostgresStore_LockDebtorSerializes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := "pg-" + ids.NewDebtorID()

	debtor := &models.Debtor{ID: ids.NewDebtorID(), UserID: userID, Name: "Lock"}
	require.NoError(t, store.CreateDebtor(ctx, debtor))
	t.Cleanup(func() { store.DeleteDebtor(ctx, userID, debtor.ID) })

	// Each transaction reads the counter under the lock and bumps it.
	// Without serialization some increments would be lost.
	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.WithTx(ctx, func(tx storage.Ledger) error {
				d, err := tx.LockDebtor(ctx, userID, debtor.ID)
				if err != nil {
					return err
				}
				d.ContactInfo += "x"
				return tx.UpdateDebtor(ctx, d)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	d, err := store.GetDebtor(ctx, userID, debtor.ID)
	require.NoError(t, err)
	assert.Len(t, d.ContactInfo, workers)
}

func TestPostgresStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("pg-"+ids.NewDebtorID(), "hash")
	require.NoError(t, store.CreateUser(ctx, user))
	assert.ErrorIs(t, store.CreateUser(ctx, models.NewUser(user.Username, "x")), models.ErrDuplicateName)

	got, err := store.GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = store.GetUserByID(ctx, "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
