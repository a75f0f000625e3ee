package memberledger

import (
	"context"
	"time"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/token"
	"github.com/xraph/memberledger/treasury"
	"github.com/xraph/memberledger/txlog"
	"github.com/xraph/memberledger/types"
)

// ExitRefundPercent is the share of the current tier price refunded on
// exit, paid from the community fund.
const ExitRefundPercent = 30

// Exit burns the caller's membership and refunds 30% of their current
// tier price from the community fund. Exit is refused outright when the
// lock period has not elapsed or the fund cannot cover the refund;
// there is no partial exit.
//
// The refund transfer runs before any record is mutated: a failed
// transfer leaves the membership fully intact.
func (l *Ledger) Exit(ctx context.Context, caller types.Address) (types.Amount, error) {
	if err := l.lockEngine(ctx, caller); err != nil {
		return 0, err
	}
	defer l.unlockEngine()

	caller = caller.Normalize()

	if _, err := l.requireActive(ctx); err != nil {
		return 0, err
	}

	m, err := l.store.GetMember(ctx, caller)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	if !now.After(m.CanExitAfter(l.exitLock)) {
		return 0, ErrExitLocked
	}

	if err := l.checkActionInterval(ctx, caller); err != nil {
		return 0, err
	}

	p, err := l.store.GetPlan(ctx, m.PlanID)
	if err != nil {
		return 0, err
	}
	refund, err := p.Price.Percent(ExitRefundPercent)
	if err != nil {
		return 0, err
	}

	balances, err := l.store.GetBalances(ctx)
	if err != nil {
		return 0, err
	}
	if balances.Fund < refund {
		return 0, ErrFundCannotCover
	}

	tok, err := l.store.GetTokenByOwner(ctx, caller)
	if err != nil {
		return 0, err
	}
	if err := token.Guard(caller, types.ZeroAddress); err != nil {
		return 0, err
	}

	// Outbound transfer first: if it fails, nothing has been mutated.
	if err := l.payOut(ctx, caller, refund); err != nil {
		return 0, err
	}

	if err := balances.Debit(treasury.BalanceFund, refund); err != nil {
		return 0, err
	}
	if err := l.store.UpdateBalances(ctx, balances); err != nil {
		return 0, err
	}

	if err := l.store.DeleteToken(ctx, tok.ID); err != nil {
		return 0, err
	}
	if err := l.store.DeleteMember(ctx, caller); err != nil {
		return 0, err
	}

	rec := &txlog.Record{
		ID:        id.NewTransactionID(),
		From:      l.custody,
		To:        caller,
		Amount:    refund,
		Timestamp: now,
		Kind:      txlog.KindRefund,
	}
	if err := l.store.AppendTransaction(ctx, rec); err != nil {
		return 0, err
	}

	if err := l.recordAction(ctx, caller); err != nil {
		return 0, err
	}

	l.logger.Info("member exited",
		"address", caller,
		"plan", m.PlanID,
		"refund", refund,
	)
	l.plugins.EmitMemberExited(ctx, string(caller), refund.Int64())

	return refund, nil
}
