package memberledger

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/member"
	"github.com/xraph/memberledger/plan"
	"github.com/xraph/memberledger/token"
	"github.com/xraph/memberledger/txlog"
	"github.com/xraph/memberledger/types"
)

// SystemStats aggregates the ledger's headline numbers.
type SystemStats struct {
	TokenSupply      int          `json:"token_supply"`
	MemberCount      int          `json:"member_count"`
	TotalRevenue     types.Amount `json:"total_revenue"`
	TotalCommission  types.Amount `json:"total_commission"`
	OwnerBalance     types.Amount `json:"owner_balance"`
	FeeSystemBalance types.Amount `json:"fee_system_balance"`
	FundBalance      types.Amount `json:"fund_balance"`
}

// Status is the operational snapshot of one ledger instance.
type Status struct {
	Paused             bool          `json:"paused"`
	CustodyBalance     types.Amount  `json:"custody_balance"`
	MemberCount        int           `json:"member_count"`
	PlanCount          int           `json:"plan_count"`
	EmergencyRequested bool          `json:"emergency_requested"`
	EmergencyMaturesIn time.Duration `json:"emergency_matures_in"`
}

// Reconciliation compares the tracked pools against custody.
type Reconciliation struct {
	Expected types.Amount `json:"expected"` // sum of the three tracked pools
	Actual   types.Amount `json:"actual"`   // payment token balance in custody
	Diverged bool         `json:"diverged"`
}

// GetPlan returns one plan.
func (l *Ledger) GetPlan(ctx context.Context, planID int) (*plan.Plan, error) {
	return l.store.GetPlan(ctx, planID)
}

// ListPlans returns all plans in tier order.
func (l *Ledger) ListPlans(ctx context.Context) ([]*plan.Plan, error) {
	return l.store.ListPlans(ctx)
}

// CycleInfo returns cycle progression for one plan.
func (l *Ledger) CycleInfo(ctx context.Context, planID int) (*plan.CycleInfo, error) {
	return l.store.GetCycleInfo(ctx, planID)
}

// GetMember returns one member record.
func (l *Ledger) GetMember(ctx context.Context, addr types.Address) (*member.Member, error) {
	return l.store.GetMember(ctx, addr)
}

// IsMember reports whether addr currently holds a membership.
func (l *Ledger) IsMember(ctx context.Context, addr types.Address) (bool, error) {
	_, err := l.store.GetMember(ctx, addr)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) || errors.Is(err, ErrNotMember) {
		return false, nil
	}
	return false, err
}

// MemberHistory returns the recipient's bounded transaction history in
// ring-slot order.
func (l *Ledger) MemberHistory(ctx context.Context, addr types.Address) ([]*txlog.Record, error) {
	return l.store.ListTransactions(ctx, addr)
}

// TokenOf returns the membership token held by owner.
func (l *Ledger) TokenOf(ctx context.Context, owner types.Address) (*token.Token, error) {
	return l.store.GetTokenByOwner(ctx, owner)
}

// TokenByIndex returns the index-th live token in mint order.
func (l *Ledger) TokenByIndex(ctx context.Context, index int) (*token.Token, error) {
	return l.store.TokenByIndex(ctx, index)
}

// TotalSupply returns the number of live membership tokens.
func (l *Ledger) TotalSupply(ctx context.Context) (int, error) {
	return l.store.CountTokens(ctx)
}

// TokenDescriptor returns a token's self-contained descriptor data URI.
func (l *Ledger) TokenDescriptor(ctx context.Context, tokenID id.TokenID) (string, error) {
	tok, err := l.store.GetToken(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return tok.DescriptorURI()
}

// Stats returns aggregate system statistics.
func (l *Ledger) Stats(ctx context.Context) (*SystemStats, error) {
	supply, err := l.store.CountTokens(ctx)
	if err != nil {
		return nil, err
	}
	members, err := l.store.CountMembers(ctx)
	if err != nil {
		return nil, err
	}
	balances, err := l.store.GetBalances(ctx)
	if err != nil {
		return nil, err
	}

	return &SystemStats{
		TokenSupply:      supply,
		MemberCount:      members,
		TotalRevenue:     balances.TotalRevenue,
		TotalCommission:  balances.TotalCommission,
		OwnerBalance:     balances.Owner,
		FeeSystemBalance: balances.FeeSystem,
		FundBalance:      balances.Fund,
	}, nil
}

// Status returns the operational snapshot: pause flag, custody balance,
// record counts, and emergency timelock state.
func (l *Ledger) Status(ctx context.Context) (*Status, error) {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return nil, err
	}
	custody, err := l.pay.BalanceOf(ctx, l.custody)
	if err != nil {
		return nil, err
	}
	members, err := l.store.CountMembers(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := l.store.CountPlans(ctx)
	if err != nil {
		return nil, err
	}

	s := &Status{
		Paused:             state.Paused,
		CustodyBalance:     custody,
		MemberCount:        members,
		PlanCount:          plans,
		EmergencyRequested: state.EmergencyPending(),
	}
	if s.EmergencyRequested {
		remaining := l.emergencyDelay - time.Since(state.EmergencyRequestedAt)
		if remaining > 0 {
			s.EmergencyMaturesIn = remaining
		}
	}
	return s, nil
}

// Reconcile compares the sum of the tracked pools against the payment
// token balance actually held in custody. Divergence is surfaced, not
// enforced: value can accumulate in custody outside the ledger's
// bookkeeping.
func (l *Ledger) Reconcile(ctx context.Context) (*Reconciliation, error) {
	balances, err := l.store.GetBalances(ctx)
	if err != nil {
		return nil, err
	}
	expected, err := balances.Tracked()
	if err != nil {
		return nil, err
	}
	actual, err := l.pay.BalanceOf(ctx, l.custody)
	if err != nil {
		return nil, err
	}

	return &Reconciliation{
		Expected: expected,
		Actual:   actual,
		Diverged: expected != actual,
	}, nil
}
