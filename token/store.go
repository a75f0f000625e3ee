package token

import (
	"context"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/types"
)

// Store is the membership token persistence interface. Enumeration is
// by mint order: ByIndex(0) is the oldest live token.
type Store interface {
	Create(ctx context.Context, t *Token) error
	Get(ctx context.Context, tokenID id.TokenID) (*Token, error)
	GetByOwner(ctx context.Context, owner types.Address) (*Token, error)
	ByIndex(ctx context.Context, index int) (*Token, error)
	UpdateMetadata(ctx context.Context, tokenID id.TokenID, md Metadata) error
	Delete(ctx context.Context, tokenID id.TokenID) error
	Count(ctx context.Context) (int, error)
}
