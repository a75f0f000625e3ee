package memberledger

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/memberledger/types"
)

// lockEngine acquires the serialization guard without blocking. A call
// that arrives while another entry point holds the guard is a reentrant
// or concurrent attempt and is rejected outright.
func (l *Ledger) lockEngine(ctx context.Context, caller types.Address) error {
	if !l.op.TryLock() {
		l.plugins.EmitGuardTripped(ctx, string(caller), "reentrancy")
		return ErrReentrantCall
	}
	return nil
}

func (l *Ledger) unlockEngine() {
	l.op.Unlock()
}

// checkActionInterval enforces the per-address front-running delay on
// state-changing member actions.
func (l *Ledger) checkActionInterval(ctx context.Context, addr types.Address) error {
	last, err := l.store.GetLastAction(ctx, addr)
	if err != nil {
		return err
	}
	if !last.IsZero() && time.Since(last) < l.actionInterval {
		l.plugins.EmitGuardTripped(ctx, string(addr), "action_interval")
		return ErrActionTooSoon
	}
	return nil
}

func (l *Ledger) recordAction(ctx context.Context, addr types.Address) error {
	return l.store.SetLastAction(ctx, addr, time.Now().UTC())
}

// walkReferralChain verifies the upline chain starting at upline stays
// under MaxReferralDepth hops and contains no loop. The walk ends when
// it reaches an address with no member record (the owner, or a
// zero-address upline).
func (l *Ledger) walkReferralChain(ctx context.Context, start, upline types.Address) error {
	visited := map[types.Address]bool{start.Normalize(): true}

	current := upline.Normalize()
	for depth := 0; !current.IsZero(); depth++ {
		if depth >= MaxReferralDepth {
			l.plugins.EmitGuardTripped(ctx, string(start), "referral_depth")
			return ErrReferralDepth
		}
		if visited[current] {
			l.plugins.EmitGuardTripped(ctx, string(start), "referral_loop")
			return ErrReferralLoop
		}
		visited[current] = true

		m, err := l.store.GetMember(ctx, current)
		if err != nil {
			if IsNotFound(err) || errors.Is(err, ErrNotMember) {
				return nil
			}
			return err
		}
		current = m.Upline.Normalize()
	}
	return nil
}

// pullPayment moves amount from payer into custody and verifies the
// custody balance grew by exactly that amount. The delta check defends
// against non-standard token behavior: the collaborator's return value
// alone is never trusted.
func (l *Ledger) pullPayment(ctx context.Context, payer types.Address, amount types.Amount) error {
	before, err := l.pay.BalanceOf(ctx, l.custody)
	if err != nil {
		return err
	}

	ok, err := l.pay.TransferFrom(ctx, payer, l.custody, amount)
	if err != nil || !ok {
		l.logger.Warn("payment pull failed",
			"payer", payer,
			"amount", amount,
			"error", err,
		)
		return ErrTransferFailed
	}

	after, err := l.pay.BalanceOf(ctx, l.custody)
	if err != nil {
		return err
	}

	delta, err := after.Sub(before)
	if err != nil || delta != amount {
		l.logger.Error("custody balance delta mismatch",
			"expected", amount,
			"got", delta,
		)
		return ErrBalanceDeltaMismatch
	}
	return nil
}

// payOut transfers amount from custody to recipient.
func (l *Ledger) payOut(ctx context.Context, recipient types.Address, amount types.Amount) error {
	ok, err := l.pay.Transfer(ctx, recipient, amount)
	if err != nil || !ok {
		l.logger.Warn("payout failed",
			"recipient", recipient,
			"amount", amount,
			"error", err,
		)
		return ErrTransferFailed
	}
	return nil
}

// compensate returns a pulled payment after a later step failed, so the
// whole operation nets to no state change. Failure to compensate is
// logged loudly; it leaves funds in custody visible to Reconcile.
func (l *Ledger) compensate(ctx context.Context, payer types.Address, amount types.Amount) {
	if err := l.payOut(ctx, payer, amount); err != nil {
		l.logger.Error("compensating refund failed, custody holds unattributed funds",
			"payer", payer,
			"amount", amount,
			"error", err,
		)
	}
}
