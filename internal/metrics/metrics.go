// Package metrics defines the Prometheus collectors for the ledger and the
// RPC layer.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/debtbook/internal/money"
)

const namespace = "debtbook"

// Rejection reasons for PaymentRejections.
const (
	ReasonInvalid  = "invalid_input"
	ReasonNotFound = "not_found"
	ReasonNoDebts  = "no_open_debts"
	ReasonConflict = "conflict"
	ReasonInternal = "internal"
)

// Metrics holds every collector the service exports.
type Metrics struct {
	PaymentsAllocated     prometheus.Counter
	PaymentRejections     *prometheus.CounterVec
	AllocatedAmount       prometheus.Counter
	OrphanPaymentsDeleted prometheus.Counter
	Deletions             *prometheus.CounterVec
	RPCDuration           *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PaymentsAllocated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_allocated_total",
			Help:      "Payments successfully allocated to debt items.",
		}),
		PaymentRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_rejections_total",
			Help:      "Payments rejected before anything was written.",
		}, []string{"reason"}),
		AllocatedAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocated_amount_total",
			Help:      "Sum of allocated amounts in currency units.",
		}),
		OrphanPaymentsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_payments_deleted_total",
			Help:      "Payments deleted because their last allocation was removed.",
		}),
		Deletions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "Ledger entities deleted on request.",
		}, []string{"entity"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

// PaymentAllocated records a committed payment.
func (m *Metrics) PaymentAllocated(amount money.Amount) {
	if m == nil {
		return
	}
	m.PaymentsAllocated.Inc()
	f, _ := amount.Decimal().Float64()
	m.AllocatedAmount.Add(f)
}

// PaymentRejected records a rejected payment.
func (m *Metrics) PaymentRejected(reason string) {
	if m == nil {
		return
	}
	m.PaymentRejections.WithLabelValues(reason).Inc()
}

// Deleted records a deletion of entity ("debtor", "debt_item", "payment").
func (m *Metrics) Deleted(entity string) {
	if m == nil {
		return
	}
	m.Deletions.WithLabelValues(entity).Inc()
}

// OrphansDeleted records payments removed as orphans.
func (m *Metrics) OrphansDeleted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.OrphanPaymentsDeleted.Add(float64(n))
}

// ObserveRPC records the duration of one RPC.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.RPCDuration.WithLabelValues(procedure, code).Observe(d.Seconds())
}
