package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/debtbook/internal/calculator"
	"github.com/mmynk/debtbook/internal/ids"
	"github.com/mmynk/debtbook/internal/metrics"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
	"github.com/mmynk/debtbook/internal/storage"
	"github.com/mmynk/debtbook/internal/storage/sqlite"
)

const owner = "user-1"

func newTestLedger(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, append([]Option{WithLogger(quiet)}, opts...)...)
}

func mustDebtor(t *testing.T, l *Service, name string) *models.Debtor {
	t.Helper()
	d, err := l.CreateDebtor(context.Background(), owner, name, "")
	require.NoError(t, err)
	return d
}

func mustItem(t *testing.T, l *Service, debtorID, price, date string) *models.DebtItem {
	t.Helper()
	item, err := l.CreateDebtItem(context.Background(), owner, NewDebtItem{
		DebtorID:        debtorID,
		Description:     "item " + price,
		UnitPrice:       money.MustParse(price),
		TransactionDate: date,
	})
	require.NoError(t, err)
	return item
}

func mustPay(t *testing.T, l *Service, debtorID, amount, date string) *Receipt {
	t.Helper()
	r, err := l.AllocatePayment(context.Background(), owner, NewPayment{
		DebtorID:    debtorID,
		Amount:      money.MustParse(amount),
		PaymentDate: date,
	})
	require.NoError(t, err)
	return r
}

func unpaid(t *testing.T, l *Service, debtorID string) money.Amount {
	t.Helper()
	b, err := l.GetDebtorBalance(context.Background(), owner, debtorID)
	require.NoError(t, err)
	return b.TotalUnpaid
}

// assertExact checks that every payment equals the sum of its allocations
// and that no item is paid beyond its total.
func assertExact(t *testing.T, l *Service, debtorID string) {
	t.Helper()
	ctx := context.Background()

	payments, err := l.ListPayments(ctx, owner, debtorID)
	require.NoError(t, err)
	for _, p := range payments {
		var sum money.Amount
		for _, a := range p.Allocations {
			sum += a.AmountAllocated
		}
		assert.Equal(t, p.Amount, sum, "payment %s allocations", p.ID)
	}

	items, err := l.ListDebtItems(ctx, owner, debtorID)
	require.NoError(t, err)
	for _, item := range items {
		assert.LessOrEqual(t, int64(item.AmountPaid), int64(item.TotalAmount+money.Epsilon), "item %s", item.ID)
	}
}

func TestAllocatePayment_FIFO(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	b := mustItem(t, l, d.ID, "50", "2024-01-05")
	a := mustItem(t, l, d.ID, "100", "2024-01-01")

	r := mustPay(t, l, d.ID, "120", "2024-02-01")

	require.Len(t, r.Allocations, 2)
	assert.Equal(t, a.ID, r.Allocations[0].DebtItemID)
	assert.Equal(t, money.MustParse("100"), r.Allocations[0].Amount)
	assert.Equal(t, b.ID, r.Allocations[1].DebtItemID)
	assert.Equal(t, money.MustParse("20"), r.Allocations[1].Amount)
	assert.Equal(t, money.MustParse("120"), r.Payment.Amount)
	assert.Equal(t, money.Amount(0), r.Unallocated)

	assert.Equal(t, money.MustParse("30"), unpaid(t, l, d.ID))

	balance, err := l.GetDebtorBalance(ctx, owner, d.ID)
	require.NoError(t, err)
	for _, ib := range balance.Items {
		switch ib.ItemID {
		case a.ID:
			assert.True(t, ib.IsSettled)
		case b.ID:
			assert.False(t, ib.IsSettled)
			assert.Equal(t, money.MustParse("30"), ib.AmountOwed)
		}
	}
	assertExact(t, l, d.ID)
}

func TestAllocatePayment_SameDateUsesCreationOrder(t *testing.T) {
	l := newTestLedger(t)
	d := mustDebtor(t, l, "D")
	first := mustItem(t, l, d.ID, "10", "2024-01-01")
	mustItem(t, l, d.ID, "10", "2024-01-01")

	r := mustPay(t, l, d.ID, "5", "2024-01-02")
	require.Len(t, r.Allocations, 1)
	assert.Equal(t, first.ID, r.Allocations[0].DebtItemID)
}

func TestAllocatePayment_NoOpenDebts(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")

	_, err := l.AllocatePayment(ctx, owner, NewPayment{DebtorID: d.ID, Amount: money.MustParse("10"), PaymentDate: "2024-02-01"})
	assert.ErrorIs(t, err, models.ErrNoOpenDebts)

	mustItem(t, l, d.ID, "20", "2024-01-01")
	mustPay(t, l, d.ID, "20", "2024-01-02")

	_, err = l.AllocatePayment(ctx, owner, NewPayment{DebtorID: d.ID, Amount: money.MustParse("10"), PaymentDate: "2024-02-01"})
	assert.ErrorIs(t, err, models.ErrNoOpenDebts)

	payments, err := l.ListPayments(ctx, owner, d.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1, "rejected payments must not be recorded")
}

func TestAllocatePayment_ExcessIsNotRecorded(t *testing.T) {
	l := newTestLedger(t)
	d := mustDebtor(t, l, "D")
	mustItem(t, l, d.ID, "100", "2024-01-01")
	mustItem(t, l, d.ID, "50", "2024-01-05")

	r := mustPay(t, l, d.ID, "500", "2024-02-01")
	assert.Equal(t, money.MustParse("150"), r.Payment.Amount)
	assert.Equal(t, money.MustParse("350"), r.Unallocated)
	assert.Equal(t, money.Amount(0), unpaid(t, l, d.ID))
	assertExact(t, l, d.ID)
}

func TestAllocatePayment_TinyAmount(t *testing.T) {
	l := newTestLedger(t)
	d := mustDebtor(t, l, "D")
	mustItem(t, l, d.ID, "10", "2024-01-01")

	r := mustPay(t, l, d.ID, "0.005", "2024-01-02")
	assert.Equal(t, money.MustParse("0.005"), r.Payment.Amount)
	assert.Equal(t, money.MustParse("9.995"), unpaid(t, l, d.ID))
}

func TestAllocatePayment_OneCent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")

	item := mustItem(t, l, d.ID, "0.01", "2024-01-01")
	assert.False(t, item.IsSettled(), "a one cent item starts open")

	r := mustPay(t, l, d.ID, "0.01", "2024-01-02")
	assert.Equal(t, money.MustParse("0.01"), r.Payment.Amount)
	require.Len(t, r.Allocations, 1)
	assert.Equal(t, item.ID, r.Allocations[0].DebtItemID)
	assert.Equal(t, money.Amount(0), unpaid(t, l, d.ID))

	require.NoError(t, l.DeleteDebtor(ctx, owner, d.ID))
}

func TestAllocatePayment_InvalidInput(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")

	tests := []struct {
		name string
		in   NewPayment
	}{
		{"zero amount", NewPayment{DebtorID: d.ID, Amount: 0, PaymentDate: "2024-01-01"}},
		{"negative amount", NewPayment{DebtorID: d.ID, Amount: -100, PaymentDate: "2024-01-01"}},
		{"bad date", NewPayment{DebtorID: d.ID, Amount: 100, PaymentDate: "Jan 1"}},
		{"missing date", NewPayment{DebtorID: d.ID, Amount: 100}},
		{"malformed debtor id", NewPayment{DebtorID: "42", Amount: 100, PaymentDate: "2024-01-01"}},
		{"above the amount limit", NewPayment{DebtorID: d.ID, Amount: money.MaxAmount + 1, PaymentDate: "2024-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.AllocatePayment(ctx, owner, tt.in)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestOwnership(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	item := mustItem(t, l, d.ID, "10", "2024-01-01")
	r := mustPay(t, l, d.ID, "5", "2024-01-02")

	const intruder = "user-2"
	_, err := l.AllocatePayment(ctx, intruder, NewPayment{DebtorID: d.ID, Amount: 100, PaymentDate: "2024-01-01"})
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = l.ListDebtItems(ctx, intruder, d.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = l.ListPayments(ctx, intruder, d.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = l.DeleteDebtItem(ctx, intruder, item.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, l.DeletePayment(ctx, intruder, r.Payment.ID), models.ErrNotFound)
	assert.ErrorIs(t, l.DeleteDebtor(ctx, intruder, d.ID), models.ErrNotFound)
	_, err = l.CreateDebtItem(ctx, intruder, NewDebtItem{DebtorID: d.ID, Description: "x", UnitPrice: 1, TransactionDate: "2024-01-01"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	list, err := l.ListDebtors(ctx, intruder)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDebtors(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	d := mustDebtor(t, l, "Dana")
	_, err := l.CreateDebtor(ctx, owner, "Dana", "")
	assert.ErrorIs(t, err, models.ErrDuplicateName)
	_, err = l.CreateDebtor(ctx, owner, "   ", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	mustDebtor(t, l, "Ari")
	_, err = l.UpdateDebtor(ctx, owner, d.ID, "Ari", "")
	assert.ErrorIs(t, err, models.ErrDuplicateName)

	updated, err := l.UpdateDebtor(ctx, owner, d.ID, "Dana K.", "+1 555 0100")
	require.NoError(t, err)
	assert.Equal(t, "Dana K.", updated.Name)

	mustItem(t, l, d.ID, "100", "2024-01-01")
	mustItem(t, l, d.ID, "50", "2024-01-05")
	mustPay(t, l, d.ID, "120", "2024-02-01")

	list, err := l.ListDebtors(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ari", list[0].Name)
	assert.Equal(t, "Dana K.", list[1].Name)
	assert.Equal(t, money.MustParse("150"), list[1].TotalCharged)
	assert.Equal(t, money.MustParse("120"), list[1].TotalPaid)
}

func TestDebtItems(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")

	item, err := l.CreateDebtItem(ctx, owner, NewDebtItem{
		DebtorID:        d.ID,
		Description:     "Concert ticket",
		Quantity:        3,
		UnitPrice:       money.MustParse("12.50"),
		TransactionDate: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("37.50"), item.TotalAmount)

	defaulted := mustItem(t, l, d.ID, "5", "2024-01-01")
	assert.Equal(t, int64(1), defaulted.Quantity)

	items, err := l.ListDebtItems(ctx, owner, d.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, item.ID, items[0].ID, "newest first")

	invalid := []NewDebtItem{
		{DebtorID: d.ID, Description: "", UnitPrice: 1, TransactionDate: "2024-01-01"},
		{DebtorID: d.ID, Description: "x", Quantity: -1, UnitPrice: 1, TransactionDate: "2024-01-01"},
		{DebtorID: d.ID, Description: "x", UnitPrice: 0, TransactionDate: "2024-01-01"},
		{DebtorID: d.ID, Description: "x", UnitPrice: 1, TransactionDate: "2024-13-01"},
		{DebtorID: d.ID, Description: "x", UnitPrice: money.Amount(500_000_000_000_000 * 10_000), TransactionDate: "2024-01-01"},
		{DebtorID: d.ID, Description: "x", Quantity: 2, UnitPrice: money.MustParse("600000000000"), TransactionDate: "2024-01-01"},
	}
	for _, in := range invalid {
		_, err := l.CreateDebtItem(ctx, owner, in)
		assert.ErrorIs(t, err, models.ErrInvalidInput, "%+v", in)
	}
}

func TestDeleteDebtItem_OrphanPayment(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	item := mustItem(t, l, d.ID, "20", "2024-01-01")
	other := mustItem(t, l, d.ID, "30", "2024-01-05")
	r := mustPay(t, l, d.ID, "20", "2024-02-01")
	require.Len(t, r.Allocations, 1)

	res, err := l.DeleteDebtItem(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemovedAllocations)
	assert.Equal(t, []string{r.Payment.ID}, res.DeletedPayments)

	payments, err := l.ListPayments(ctx, owner, d.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	items, err := l.ListDebtItems(ctx, owner, d.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, other.ID, items[0].ID)
}

func TestDeleteDebtItem_AdjustsSharedPayment(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	mustItem(t, l, d.ID, "100", "2024-01-01")
	b := mustItem(t, l, d.ID, "50", "2024-01-05")
	r := mustPay(t, l, d.ID, "120", "2024-02-01")

	res, err := l.DeleteDebtItem(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r.Payment.ID}, res.AdjustedPayments)
	assert.Empty(t, res.DeletedPayments)

	payments, err := l.ListPayments(ctx, owner, d.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, money.MustParse("100"), payments[0].Amount)
	assert.Equal(t, money.Amount(0), unpaid(t, l, d.ID))
	assertExact(t, l, d.ID)
}

func TestDeleteDebtItem_StrictPolicy(t *testing.T) {
	l := newTestLedger(t, WithDeletePolicy(PolicyStrict))
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	paid := mustItem(t, l, d.ID, "20", "2024-01-01")
	unpaidItem := mustItem(t, l, d.ID, "30", "2024-01-05")
	mustPay(t, l, d.ID, "10", "2024-02-01")

	_, err := l.DeleteDebtItem(ctx, owner, paid.ID)
	assert.ErrorIs(t, err, models.ErrHasPayments)

	_, err = l.DeleteDebtItem(ctx, owner, unpaidItem.ID)
	assert.NoError(t, err)
}

func TestDeleteDebtItem_Symmetry(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	mustItem(t, l, d.ID, "100", "2024-01-01")
	b := mustItem(t, l, d.ID, "50", "2024-01-05")
	mustPay(t, l, d.ID, "120", "2024-02-01")
	before, err := l.GetDebtorBalance(ctx, owner, d.ID)
	require.NoError(t, err)

	_, err = l.DeleteDebtItem(ctx, owner, b.ID)
	require.NoError(t, err)

	mustItem(t, l, d.ID, "50", "2024-01-05")
	mustPay(t, l, d.ID, "20", "2024-02-01")

	after, err := l.GetDebtorBalance(ctx, owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, before.TotalCharged, after.TotalCharged)
	assert.Equal(t, before.TotalPaid, after.TotalPaid)
	assert.Equal(t, before.TotalUnpaid, after.TotalUnpaid)
	assertExact(t, l, d.ID)
}

func TestDeletePayment_ReopensItems(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	mustItem(t, l, d.ID, "100", "2024-01-01")
	r := mustPay(t, l, d.ID, "100", "2024-02-01")
	assert.Equal(t, money.Amount(0), unpaid(t, l, d.ID))

	require.NoError(t, l.DeletePayment(ctx, owner, r.Payment.ID))
	assert.Equal(t, money.MustParse("100"), unpaid(t, l, d.ID))
	assert.ErrorIs(t, l.DeletePayment(ctx, owner, r.Payment.ID), models.ErrNotFound)
}

func TestDeleteDebtor(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	t.Run("outstanding balance blocks deletion", func(t *testing.T) {
		d := mustDebtor(t, l, "Owes")
		mustItem(t, l, d.ID, "100", "2024-01-01")
		mustPay(t, l, d.ID, "60", "2024-01-02")

		err := l.DeleteDebtor(ctx, owner, d.ID)
		assert.ErrorIs(t, err, models.ErrOutstandingBalance)
	})

	t.Run("residue within tolerance counts as settled", func(t *testing.T) {
		d := mustDebtor(t, l, "Residue")
		mustItem(t, l, d.ID, "10.005", "2024-01-01")
		mustPay(t, l, d.ID, "10", "2024-01-02")
		require.Equal(t, money.MustParse("0.005"), unpaid(t, l, d.ID))

		require.NoError(t, l.DeleteDebtor(ctx, owner, d.ID))
		_, err := l.GetDebtorBalance(ctx, owner, d.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("large balances still block deletion", func(t *testing.T) {
		d := mustDebtor(t, l, "Large")
		mustItem(t, l, d.ID, "1000000000000", "2024-01-01")
		mustItem(t, l, d.ID, "1000000000000", "2024-01-02")
		require.Equal(t, 2*money.MaxAmount, unpaid(t, l, d.ID))

		err := l.DeleteDebtor(ctx, owner, d.ID)
		assert.ErrorIs(t, err, models.ErrOutstandingBalance)
	})

	t.Run("negative balance is refused", func(t *testing.T) {
		d := mustDebtor(t, l, "Overpaid")
		item := mustItem(t, l, d.ID, "10", "2024-01-01")
		payment := &models.Payment{
			ID: ids.NewPaymentID(), UserID: owner, DebtorID: d.ID,
			Amount: money.MustParse("12"), PaymentDate: "2024-01-02",
		}
		require.NoError(t, l.store.WithTx(ctx, func(tx storage.Ledger) error {
			if err := tx.CreatePayment(ctx, payment); err != nil {
				return err
			}
			return tx.CreateAllocation(ctx, models.PaymentAllocation{
				PaymentID: payment.ID, DebtItemID: item.ID, AmountAllocated: payment.Amount,
			})
		}))

		err := l.DeleteDebtor(ctx, owner, d.ID)
		assert.ErrorIs(t, err, calculator.ErrNegativeBalance)
		_, err = l.GetDebtorBalance(ctx, owner, d.ID)
		assert.NoError(t, err, "debtor must survive")
	})

	t.Run("settled debtor takes its ledger with it", func(t *testing.T) {
		d := mustDebtor(t, l, "Paid")
		mustItem(t, l, d.ID, "40", "2024-01-01")
		mustPay(t, l, d.ID, "40", "2024-01-02")

		require.NoError(t, l.DeleteDebtor(ctx, owner, d.ID))
		_, err := l.ListPayments(ctx, owner, d.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestCreateDebtItem_DebtorTotalLimit(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")

	// 922 maximal items fit in an int64; one more does not.
	require.NoError(t, l.store.WithTx(ctx, func(tx storage.Ledger) error {
		for i := 0; i < 922; i++ {
			if err := tx.CreateDebtItem(ctx, &models.DebtItem{
				ID: ids.NewDebtItemID(), DebtorID: d.ID, Description: "bulk",
				Quantity: 1, UnitPrice: money.MaxAmount, TotalAmount: money.MaxAmount,
				TransactionDate: "2024-01-01", CreatedAt: int64(i),
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	_, err := l.CreateDebtItem(ctx, owner, NewDebtItem{
		DebtorID: d.ID, Description: "one too many", UnitPrice: money.MaxAmount, TransactionDate: "2024-01-02",
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = l.GetDebtorBalance(ctx, owner, d.ID)
	assert.NoError(t, err)
}

func TestGetDebtorBalance_Idempotent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	mustItem(t, l, d.ID, "33.3333", "2024-01-01")
	mustItem(t, l, d.ID, "66.6667", "2024-01-02")
	mustPay(t, l, d.ID, "50", "2024-01-03")

	first, err := l.GetDebtorBalance(ctx, owner, d.ID)
	require.NoError(t, err)
	second, err := l.GetDebtorBalance(ctx, owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, money.MustParse("50"), first.TotalUnpaid)
}

func TestAllocatePayment_Concurrent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	mustItem(t, l, d.ID, "60", "2024-01-01")
	mustItem(t, l, d.ID, "40", "2024-01-02")

	const workers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.AllocatePayment(ctx, owner, NewPayment{
				DebtorID: d.ID, Amount: money.MustParse("20"), PaymentDate: "2024-02-01",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, models.ErrNoOpenDebts):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, money.Amount(0), unpaid(t, l, d.ID))
	assertExact(t, l, d.ID)
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	l := newTestLedger(t, WithMetrics(m))
	ctx := context.Background()
	d := mustDebtor(t, l, "D")
	item := mustItem(t, l, d.ID, "20", "2024-01-01")

	mustPay(t, l, d.ID, "20", "2024-01-02")
	_, err := l.AllocatePayment(ctx, owner, NewPayment{DebtorID: d.ID, Amount: 100, PaymentDate: "2024-01-03"})
	require.ErrorIs(t, err, models.ErrNoOpenDebts)
	_, err = l.DeleteDebtItem(ctx, owner, item.ID)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsAllocated))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.AllocatedAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentRejections.WithLabelValues(metrics.ReasonNoDebts)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrphanPaymentsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deletions.WithLabelValues("debt_item")))
}

func TestParseDeletePolicy(t *testing.T) {
	for in, want := range map[string]DeletePolicy{"": PolicyCascade, "cascade": PolicyCascade, "STRICT": PolicyStrict} {
		got, err := ParseDeletePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDeletePolicy("sometimes")
	assert.Error(t, err)
}
