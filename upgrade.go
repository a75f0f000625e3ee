package memberledger

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/memberledger/member"
	"github.com/xraph/memberledger/types"
)

// Upgrade moves caller to the next tier. Tiers cannot be skipped, the
// target plan must be active, and the upgrade cooldown must have
// elapsed. The caller pays the price difference between the two tiers;
// distribution runs on that difference at the new tier's rate.
func (l *Ledger) Upgrade(ctx context.Context, caller types.Address, newPlanID int) (*member.Member, error) {
	if err := l.lockEngine(ctx, caller); err != nil {
		return nil, err
	}
	defer l.unlockEngine()

	caller = caller.Normalize()

	if _, err := l.requireActive(ctx); err != nil {
		return nil, err
	}

	m, err := l.store.GetMember(ctx, caller)
	if err != nil {
		return nil, err
	}

	if newPlanID != m.PlanID+1 {
		return nil, ErrUpgradeOutOfSequence
	}

	newPlan, err := l.store.GetPlan(ctx, newPlanID)
	if err != nil {
		return nil, err
	}
	if !newPlan.Active {
		return nil, ErrPlanInactive
	}

	now := time.Now().UTC()
	if !m.UpgradeCooldownOver(l.upgradeCooldown, now) {
		return nil, ErrUpgradeCooldown
	}

	if err := l.checkActionInterval(ctx, caller); err != nil {
		return nil, err
	}

	currentPlan, err := l.store.GetPlan(ctx, m.PlanID)
	if err != nil {
		return nil, err
	}
	delta, err := newPlan.Price.Sub(currentPlan.Price)
	if err != nil {
		return nil, err
	}

	if err := l.pullPayment(ctx, caller, delta); err != nil {
		return nil, err
	}

	updated, err := l.completeUpgrade(ctx, m, newPlanID, delta, now)
	if err != nil {
		l.compensate(ctx, caller, delta)
		return nil, err
	}

	l.logger.Info("member upgraded",
		"address", caller,
		"from_plan", newPlanID-1,
		"to_plan", newPlanID,
		"delta", delta,
	)
	l.plugins.EmitMemberUpgraded(ctx, updated, newPlanID-1, newPlanID)

	return updated, nil
}

func (l *Ledger) completeUpgrade(ctx context.Context, m *member.Member, newPlanID int, delta types.Amount, now time.Time) (*member.Member, error) {
	newPlan, err := l.store.GetPlan(ctx, newPlanID)
	if err != nil {
		return nil, err
	}

	cycle, err := l.store.GetCycleInfo(ctx, newPlanID)
	if err != nil {
		return nil, err
	}
	rolledOver := cycle.Advance(newPlan.MembersPerCycle)
	if err := l.store.UpdateCycleInfo(ctx, cycle); err != nil {
		return nil, err
	}

	m.PlanID = newPlanID
	m.CycleNumber = cycle.CurrentCycle
	m.LastUpgradeAt = now
	m.Touch()
	if err := l.store.UpdateMember(ctx, m); err != nil {
		return nil, err
	}

	// Refresh token metadata for the new tier. The mint image is kept.
	tok, err := l.store.GetTokenByOwner(ctx, m.Address)
	if err != nil {
		return nil, err
	}
	md := tok.Metadata
	md.Name = fmt.Sprintf("%s Membership", newPlan.Name)
	md.Description = fmt.Sprintf("Membership token for %s", newPlan.Name)
	md.PlanID = newPlanID
	if err := l.store.UpdateTokenMetadata(ctx, tok.ID, md); err != nil {
		return nil, err
	}

	if err := l.distribute(ctx, m.Address, m.Upline, delta, newPlanID); err != nil {
		return nil, err
	}

	if err := l.recordAction(ctx, m.Address); err != nil {
		return nil, err
	}

	// Informational: tell hooks when the sponsor now trails the member.
	if !m.Upline.IsZero() && !m.Upline.Equal(l.owner) {
		if um, err := l.store.GetMember(ctx, m.Upline); err == nil && um.PlanID < newPlanID {
			l.plugins.EmitUplineLagging(ctx, string(m.Upline), string(m.Address), um.PlanID, newPlanID)
		}
	}

	if rolledOver {
		l.logger.Info("cycle rolled over",
			"plan", newPlanID,
			"cycle", cycle.CurrentCycle,
		)
		l.plugins.EmitCycleRollover(ctx, newPlanID, cycle.CurrentCycle)
	}

	return m, nil
}
