// Package store defines the unified storage interface for the
// membership ledger.
package store

import (
	"context"
	"time"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/member"
	"github.com/xraph/memberledger/plan"
	"github.com/xraph/memberledger/token"
	"github.com/xraph/memberledger/treasury"
	"github.com/xraph/memberledger/txlog"
	"github.com/xraph/memberledger/types"
)

// Store is the unified storage interface for all ledger entities.
// Instead of embedding the sub-interfaces, we explicitly declare all
// methods to avoid naming conflicts.
type Store interface {
	// Plan methods
	CreatePlan(ctx context.Context, p *plan.Plan) error
	GetPlan(ctx context.Context, planID int) (*plan.Plan, error)
	ListPlans(ctx context.Context) ([]*plan.Plan, error)
	UpdatePlan(ctx context.Context, p *plan.Plan) error
	CountPlans(ctx context.Context) (int, error)
	GetCycleInfo(ctx context.Context, planID int) (*plan.CycleInfo, error)
	UpdateCycleInfo(ctx context.Context, info *plan.CycleInfo) error

	// Member methods
	CreateMember(ctx context.Context, m *member.Member) error
	GetMember(ctx context.Context, addr types.Address) (*member.Member, error)
	UpdateMember(ctx context.Context, m *member.Member) error
	DeleteMember(ctx context.Context, addr types.Address) error
	CountMembers(ctx context.Context) (int, error)
	GetLastAction(ctx context.Context, addr types.Address) (time.Time, error)
	SetLastAction(ctx context.Context, addr types.Address, at time.Time) error

	// Token methods
	CreateToken(ctx context.Context, t *token.Token) error
	GetToken(ctx context.Context, tokenID id.TokenID) (*token.Token, error)
	GetTokenByOwner(ctx context.Context, owner types.Address) (*token.Token, error)
	TokenByIndex(ctx context.Context, index int) (*token.Token, error)
	UpdateTokenMetadata(ctx context.Context, tokenID id.TokenID, md token.Metadata) error
	DeleteToken(ctx context.Context, tokenID id.TokenID) error
	CountTokens(ctx context.Context) (int, error)

	// Transaction history methods
	AppendTransaction(ctx context.Context, rec *txlog.Record) error
	ListTransactions(ctx context.Context, recipient types.Address) ([]*txlog.Record, error)
	CountTransactions(ctx context.Context, recipient types.Address) (int, error)

	// Treasury methods
	GetBalances(ctx context.Context) (*treasury.Balances, error)
	UpdateBalances(ctx context.Context, b *treasury.Balances) error

	// Ledger global state
	GetState(ctx context.Context) (*types.LedgerState, error)
	UpdateState(ctx context.Context, s *types.LedgerState) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
