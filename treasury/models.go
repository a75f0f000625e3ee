// Package treasury defines the tracked balance pools and withdrawal types.
package treasury

import (
	"time"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/types"
)

// MaxBatchRequests is the upper bound on requests per batch withdrawal.
const MaxBatchRequests = 20

// BalanceType tags which pool a withdrawal debits.
type BalanceType string

// Balance pools.
const (
	BalanceOwner     BalanceType = "owner"
	BalanceFeeSystem BalanceType = "fee_system"
	BalanceFund      BalanceType = "fund"
)

// Valid reports whether the tag names a known pool.
func (b BalanceType) Valid() bool {
	switch b {
	case BalanceOwner, BalanceFeeSystem, BalanceFund:
		return true
	default:
		return false
	}
}

// Balances is the ledger's logical partition of the custody balance,
// plus cumulative counters. sum(Owner+FeeSystem+Fund) never exceeds the
// payment tokens actually held in custody; the Reconcile query surfaces
// any divergence in the other direction.
type Balances struct {
	Owner           types.Amount `json:"owner"`
	FeeSystem       types.Amount `json:"fee_system"`
	Fund            types.Amount `json:"fund"`
	TotalCommission types.Amount `json:"total_commission"` // cumulative upline payouts
	TotalRevenue    types.Amount `json:"total_revenue"`    // cumulative payments received
}

// Tracked returns the sum of the three withdrawable pools.
func (b *Balances) Tracked() (types.Amount, error) {
	return types.SumAmounts(b.Owner, b.FeeSystem, b.Fund)
}

// Get returns the pool for a balance type. Unknown types return zero.
func (b *Balances) Get(t BalanceType) types.Amount {
	switch t {
	case BalanceOwner:
		return b.Owner
	case BalanceFeeSystem:
		return b.FeeSystem
	case BalanceFund:
		return b.Fund
	default:
		return 0
	}
}

// Debit removes amount from the named pool. The caller has already
// validated sufficiency; Debit still refuses to go negative.
func (b *Balances) Debit(t BalanceType, amount types.Amount) error {
	switch t {
	case BalanceOwner:
		next, err := b.Owner.Sub(amount)
		if err != nil {
			return err
		}
		b.Owner = next
	case BalanceFeeSystem:
		next, err := b.FeeSystem.Sub(amount)
		if err != nil {
			return err
		}
		b.FeeSystem = next
	case BalanceFund:
		next, err := b.Fund.Sub(amount)
		if err != nil {
			return err
		}
		b.Fund = next
	}
	return nil
}

// WithdrawRequest is one entry in a batch withdrawal.
type WithdrawRequest struct {
	Recipient types.Address `json:"recipient"`
	Amount    types.Amount  `json:"amount"`
	Balance   BalanceType   `json:"balance"`
}

// Withdrawal is the receipt for a completed treasury withdrawal.
type Withdrawal struct {
	ID        id.WithdrawalID `json:"id"`
	Recipient types.Address   `json:"recipient"`
	Amount    types.Amount    `json:"amount"`
	Balance   BalanceType     `json:"balance"`
	Timestamp time.Time       `json:"timestamp"`
}

// BatchSummary aggregates a completed batch withdrawal per pool.
type BatchSummary struct {
	Requests  int          `json:"requests"`
	Owner     types.Amount `json:"owner"`
	FeeSystem types.Amount `json:"fee_system"`
	Fund      types.Amount `json:"fund"`
	Total     types.Amount `json:"total"`
}
