// Package paytoken defines the interface the ledger requires from the
// external fungible payment token.
//
// The token is an untrusted collaborator: its methods may call back
// into the ledger, report success without moving funds, or move a
// different amount than requested. The ledger therefore holds its
// reentrancy guard across outbound calls and verifies incoming pulls by
// custody balance delta rather than trusting the return alone.
package paytoken

import (
	"context"

	"github.com/xraph/memberledger/types"
)

// Token is the fungible payment token interface with standard
// ERC20-style semantics.
type Token interface {
	// Transfer moves amount from the caller's (ledger's) balance to the
	// recipient. A false return without error means the token refused
	// the transfer.
	Transfer(ctx context.Context, to types.Address, amount types.Amount) (bool, error)

	// TransferFrom moves amount from `from` to `to` using a prior
	// allowance granted to the ledger.
	TransferFrom(ctx context.Context, from, to types.Address, amount types.Amount) (bool, error)

	// BalanceOf returns the token balance of an address.
	BalanceOf(ctx context.Context, addr types.Address) (types.Amount, error)

	// Decimals returns the token's decimal places. The ledger requires
	// a positive value at initialization and scales tier prices by
	// 10^decimals.
	Decimals(ctx context.Context) (uint8, error)
}
