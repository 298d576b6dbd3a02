// Package ledger implements the debt ledger: debtor bookkeeping, FIFO
// payment allocation and the deletion rules that keep allocations and
// payments consistent.
//
// Every operation takes the verified user id of the caller. Rows owned by
// another account are indistinguishable from missing rows (models.ErrNotFound).
// Every mutation runs in one store transaction, after locking the debtor
// whose ledger it touches.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/debtbook/internal/ids"
	"github.com/mmynk/debtbook/internal/metrics"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/storage"
)

// DeletePolicy selects how DeleteDebtItem treats items that have allocations.
type DeletePolicy string

const (
	// PolicyCascade removes the item's allocations, shrinks the affected
	// payments and deletes payments left without allocations.
	PolicyCascade DeletePolicy = "cascade"
	// PolicyStrict refuses to delete an item that has allocations.
	PolicyStrict DeletePolicy = "strict"
)

// ParseDeletePolicy parses "cascade" or "strict". Empty means cascade.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyCascade:
		return PolicyCascade, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown delete policy %q", s)
	}
}

// maxAttempts bounds retries of an allocation that hit a ledger conflict.
const maxAttempts = 3

// Service is the ledger core.
type Service struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	policy  DeletePolicy
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics enables metric recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDeletePolicy sets the debt item deletion policy. Defaults to cascade.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a ledger Service on top of store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		policy: PolicyCascade,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy reports the configured delete policy.
func (s *Service) Policy() DeletePolicy {
	return s.policy
}

func checkUser(userID string) error {
	if userID == "" {
		return models.Invalid("userId", "is required")
	}
	return nil
}

func checkID(field, id string, prefix ids.Prefix) error {
	if err := ids.Validate(id, prefix); err != nil {
		return models.Invalid(field, "must be a valid %s id", prefix)
	}
	return nil
}

func checkDate(field, date string) error {
	if date == "" {
		return models.Invalid(field, "is required")
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return nil
}

// isBusinessError reports whether err is an expected rejection rather than
// a store failure.
func isBusinessError(err error) bool {
	for _, target := range []error{
		models.ErrInvalidInput,
		models.ErrNotFound,
		models.ErrDuplicateName,
		models.ErrNoOpenDebts,
		models.ErrOutstandingBalance,
		models.ErrHasPayments,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// logFailure logs err at Warn for rejections and Error for everything else.
func (s *Service) logFailure(msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err)
	if isBusinessError(err) {
		s.logger.Warn(msg, attrs...)
		return
	}
	s.logger.Error(msg, attrs...)
}
