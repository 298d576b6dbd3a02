// Package ids generates the prefixed identifiers used for ledger entities.
//
// Identifiers are TypeIDs ("dbt_01h2xcejqtf2nbrexx3vqjhp41"). The suffix is
// UUIDv7-based, so lexical order of two ids of the same prefix equals their
// creation order. The allocation engine relies on this as its final tie-break.
package ids

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in an id.
type Prefix string

const (
	PrefixDebtor   Prefix = "dbt"
	PrefixDebtItem Prefix = "item"
	PrefixPayment  Prefix = "pay"
)

// New generates a new id with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("ids: invalid prefix %q: %v", prefix, err))
	}
	return tid.String()
}

func NewDebtorID() string   { return New(PrefixDebtor) }
func NewDebtItemID() string { return New(PrefixDebtItem) }
func NewPaymentID() string  { return New(PrefixPayment) }

// Validate checks that s is a well-formed id carrying the expected prefix.
func Validate(s string, expected Prefix) error {
	if s == "" {
		return fmt.Errorf("ids: empty %s id", expected)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return fmt.Errorf("ids: parse %q: %w", s, err)
	}
	if Prefix(tid.Prefix()) != expected {
		return fmt.Errorf("ids: expected prefix %q, got %q", expected, tid.Prefix())
	}
	return nil
}
