// Package txlog keeps the bounded per-recipient transaction history.
package txlog

import (
	"time"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/types"
)

// Capacity is the fixed ring size per recipient. Once a recipient has
// Capacity records, new entries overwrite the oldest slot in
// round-robin order via a persistent per-recipient cursor.
const Capacity = 50

// Kind classifies a transaction record.
type Kind string

// Record kinds.
const (
	KindReferral   Kind = "referral"   // upline commission payout
	KindRefund     Kind = "refund"     // exit refund from the community fund
	KindWithdrawal Kind = "withdrawal" // treasury withdrawal
)

// Record is one entry in a recipient's history ring.
type Record struct {
	ID        id.TransactionID `json:"id"`
	From      types.Address    `json:"from"`
	To        types.Address    `json:"to"`
	Amount    types.Amount     `json:"amount"`
	Timestamp time.Time        `json:"timestamp"`
	Kind      Kind             `json:"kind"`
}
