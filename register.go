package memberledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/member"
	"github.com/xraph/memberledger/plan"
	"github.com/xraph/memberledger/token"
	"github.com/xraph/memberledger/types"
)

// Register enrolls caller into the entry tier under the given upline
// and mints their membership token. The very first registration forces
// the ledger owner as upline and permanently latches the bootstrap
// state; a zero or self upline also falls back to the owner.
//
// All preconditions are validated before the tier price is pulled from
// the caller; if any step after a successful pull fails, the payment is
// returned so the operation nets to nothing.
func (l *Ledger) Register(ctx context.Context, caller types.Address, planID int, upline types.Address) (*member.Member, error) {
	if err := l.lockEngine(ctx, caller); err != nil {
		return nil, err
	}
	defer l.unlockEngine()

	caller = caller.Normalize()
	if caller.IsZero() {
		return nil, ErrInvalidAddress
	}

	state, err := l.requireActive(ctx)
	if err != nil {
		return nil, err
	}

	if planID != plan.EntryPlanID {
		return nil, ErrMustStartAtTier1
	}

	p, err := l.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrPlanInactive
	}
	if !p.HasDefaultImage() {
		return nil, ErrPlanNoImage
	}

	if _, err := l.store.GetMember(ctx, caller); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotMember) {
		return nil, err
	}

	if err := l.checkActionInterval(ctx, caller); err != nil {
		return nil, err
	}

	upline, err = l.resolveUpline(ctx, state, caller, upline)
	if err != nil {
		return nil, err
	}

	if err := l.walkReferralChain(ctx, caller, upline); err != nil {
		return nil, err
	}

	// Preconditions hold; pull the tier price into custody.
	if err := l.pullPayment(ctx, caller, p.Price); err != nil {
		return nil, err
	}

	m, err := l.completeRegistration(ctx, state, caller, upline, p)
	if err != nil {
		l.compensate(ctx, caller, p.Price)
		return nil, err
	}

	l.logger.Info("member registered",
		"address", caller,
		"upline", upline,
		"plan", p.ID,
		"price", p.Price,
	)
	l.plugins.EmitMemberRegistered(ctx, m)

	return m, nil
}

// resolveUpline applies the bootstrap latch and upline fallback rules.
func (l *Ledger) resolveUpline(ctx context.Context, state *types.LedgerState, caller, upline types.Address) (types.Address, error) {
	// The first registrant is always sponsored by the owner.
	if state.Bootstrap == types.AwaitingBootstrap {
		return l.owner, nil
	}

	upline = upline.Normalize()
	if upline.IsZero() || upline.Equal(caller) {
		return l.owner, nil
	}
	if upline.Equal(l.owner) {
		return l.owner, nil
	}

	um, err := l.store.GetMember(ctx, upline)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return types.ZeroAddress, ErrInvalidUpline
		}
		return types.ZeroAddress, err
	}
	if um.PlanID < plan.EntryPlanID {
		return types.ZeroAddress, ErrInvalidUpline
	}

	return upline, nil
}

// completeRegistration performs the mutations that follow a successful
// payment pull. Any error here triggers a compensating refund in the
// caller.
func (l *Ledger) completeRegistration(ctx context.Context, state *types.LedgerState, caller, upline types.Address, p *plan.Plan) (*member.Member, error) {
	now := time.Now().UTC()

	cycle, err := l.store.GetCycleInfo(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	rolledOver := cycle.Advance(p.MembersPerCycle)
	if err := l.store.UpdateCycleInfo(ctx, cycle); err != nil {
		return nil, err
	}

	tok := &token.Token{
		ID:    id.NewTokenID(),
		Owner: caller,
		Metadata: token.Metadata{
			ImageURI:    p.DefaultImageURI,
			Name:        fmt.Sprintf("%s Membership", p.Name),
			Description: fmt.Sprintf("Membership token for %s", p.Name),
			PlanID:      p.ID,
			CreatedAt:   now,
		},
	}
	if err := token.Guard(types.ZeroAddress, caller); err != nil {
		return nil, err
	}
	if err := l.store.CreateToken(ctx, tok); err != nil {
		return nil, err
	}

	m := &member.Member{
		Entity:       types.NewEntity(),
		Address:      caller,
		Upline:       upline,
		PlanID:       p.ID,
		CycleNumber:  cycle.CurrentCycle,
		RegisteredAt: now,
	}
	if err := l.store.CreateMember(ctx, m); err != nil {
		return nil, err
	}

	if err := l.distribute(ctx, caller, upline, p.Price, p.ID); err != nil {
		return nil, err
	}

	if state.Bootstrap == types.AwaitingBootstrap {
		state.Bootstrap = types.Active
		if err := l.store.UpdateState(ctx, state); err != nil {
			return nil, err
		}
	}

	if err := l.recordAction(ctx, caller); err != nil {
		return nil, err
	}

	if rolledOver {
		l.logger.Info("cycle rolled over",
			"plan", p.ID,
			"cycle", cycle.CurrentCycle,
		)
		l.plugins.EmitCycleRollover(ctx, p.ID, cycle.CurrentCycle)
	}

	return m, nil
}
