package txlog

import (
	"context"

	"github.com/xraph/memberledger/types"
)

// Store is the transaction history persistence interface.
//
// Append implements the ring semantics: below Capacity records for the
// recipient it appends; at Capacity it overwrites the slot under the
// recipient's cursor and advances the cursor. The cursor is persistent
// state, not derived from timestamps, so colliding timestamps cannot
// clobber the wrong slot.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	List(ctx context.Context, recipient types.Address) ([]*Record, error)
	Count(ctx context.Context, recipient types.Address) (int, error)
}
