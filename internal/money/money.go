// Package money provides the fixed-point amount type used by the ledger.
//
// Amounts are stored as an integer count of 1/10000 currency units so that
// all ledger arithmetic is integer-only. Four decimal places keep sub-cent
// residues (for example 0.005) representable, which is what the settlement
// tolerance is measured against.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places an Amount carries.
const Scale = 4

// Epsilon is the settlement tolerance: 0.01 currency units.
// A residue below Epsilon is treated as zero.
const Epsilon Amount = 100

// MaxAmount bounds every single amount: 1e12 major units. Sums of up to
// ~900 maximal amounts still fit in an int64; longer sums use Add.
const MaxAmount Amount = 1_000_000_000_000 * 10_000

// Amount is a monetary value in 1/10000 currency units.
type Amount int64

var (
	// ErrTooPrecise is returned when a value has more than Scale decimal places.
	ErrTooPrecise = errors.New("money: more than 4 decimal places")
	// ErrOverflow is returned when a value is beyond MaxAmount in either
	// direction or a sum does not fit in an Amount.
	ErrOverflow = errors.New("money: amount out of range")
)

var (
	maxAmount = decimal.NewFromInt(int64(MaxAmount))
	minAmount = decimal.NewFromInt(-int64(MaxAmount))
)

// FromDecimal converts a decimal value in major units into an Amount.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	scaled := d.Shift(Scale)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrTooPrecise
	}
	if scaled.GreaterThan(maxAmount) || scaled.LessThan(minAmount) {
		return 0, ErrOverflow
	}
	return Amount(scaled.IntPart()), nil
}

// Parse parses a major-unit string such as "12.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is like Parse but panics on error. Use for literals.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String renders the amount with two decimals, or up to four when the
// value carries sub-cent precision: "120.00", "0.005".
func (a Amount) String() string {
	d := a.Decimal()
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

// Mul multiplies the amount by a quantity, failing on overflow.
func (a Amount) Mul(qty int64) (Amount, error) {
	if a == 0 || qty == 0 {
		return 0, nil
	}
	product := int64(a) * qty
	if product/qty != int64(a) || !Amount(product).inRange() {
		return 0, ErrOverflow
	}
	return Amount(product), nil
}

// Add returns a + b, failing when the sum leaves the int64 range.
func (a Amount) Add(b Amount) (Amount, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

func (a Amount) inRange() bool {
	return a <= MaxAmount && a >= -MaxAmount
}

// Negligible reports whether the amount is below the settlement tolerance.
// Negative amounts are negligible too; callers that must tell a negative
// balance apart check the sign first.
func (a Amount) Negligible() bool {
	return a < Epsilon
}

// Min returns the smaller of two amounts.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Sum adds amounts together with overflow checking.
func Sum(values ...Amount) (Amount, error) {
	var total Amount
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer. Amounts are stored as integer minor units.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = 0
	case int64:
		*a = Amount(v)
	case int32:
		*a = Amount(v)
	case float64:
		// SQLite can hand back REAL for SUM over an empty-but-cast set.
		*a = Amount(math.Round(v))
	default:
		return fmt.Errorf("money: cannot scan %T into Amount", src)
	}
	return nil
}
