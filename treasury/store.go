package treasury

import (
	"context"
)

// Store is the treasury persistence interface. Balances form a single
// row per ledger; UpdateBalances replaces it atomically.
type Store interface {
	GetBalances(ctx context.Context) (*Balances, error)
	UpdateBalances(ctx context.Context, b *Balances) error
}
