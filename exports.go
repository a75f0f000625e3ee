package memberledger

import "github.com/xraph/memberledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Address is re-exported from the types package.
type Address = types.Address

// Amount is re-exported from the types package.
type Amount = types.Amount

// Entity is re-exported from the types package.
type Entity = types.Entity

// Re-export Amount constructors and helpers
var (
	Unit       = types.Unit
	Units      = types.Units
	SumAmounts = types.SumAmounts
)

// Re-export Entity constructor
var NewEntity = types.NewEntity

// ZeroAddress is the sentinel "no owner" address.
const ZeroAddress = types.ZeroAddress
