package member

import (
	"context"
	"time"

	"github.com/xraph/memberledger/types"
)

// Store is the member directory persistence interface.
type Store interface {
	Create(ctx context.Context, m *Member) error
	Get(ctx context.Context, addr types.Address) (*Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, addr types.Address) error
	Count(ctx context.Context) (int, error)

	// Last state-changing action per address, used by the
	// front-running delay guard. Tracked for non-members too, so it is
	// keyed by address rather than folded into the Member record.
	GetLastAction(ctx context.Context, addr types.Address) (time.Time, error)
	SetLastAction(ctx context.Context, addr types.Address, at time.Time) error
}
