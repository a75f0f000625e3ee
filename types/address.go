// Package types provides common types used across the membership ledger.
package types

import "strings"

// Address identifies an account in the ledger: a member, the contract
// owner, a withdrawal recipient, or the ledger's own custody account.
// It is an opaque, case-insensitive string supplied by the embedding
// application (a wallet address, a tenant ID, an account number).
type Address string

// ZeroAddress is the "no owner" sentinel. Token movements from it are
// mints, movements to it are burns, and an upline of ZeroAddress means
// "no referrer".
const ZeroAddress Address = ""

// IsZero returns true if the address is the zero sentinel.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Normalize returns the canonical lowercase form of the address.
func (a Address) Normalize() Address {
	return Address(strings.ToLower(strings.TrimSpace(string(a))))
}

// Equal compares two addresses in their canonical form.
func (a Address) Equal(other Address) bool {
	return a.Normalize() == other.Normalize()
}

// String implements fmt.Stringer.
func (a Address) String() string { return string(a) }
