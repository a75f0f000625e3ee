package memberledger

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/treasury"
	"github.com/xraph/memberledger/txlog"
	"github.com/xraph/memberledger/types"
)

// WithdrawOwnerBalance pays out from the owner pool. Owner-only, and
// never blocked by pause.
func (l *Ledger) WithdrawOwnerBalance(ctx context.Context, caller, recipient types.Address, amount types.Amount) (*treasury.Withdrawal, error) {
	return l.withdraw(ctx, caller, recipient, amount, treasury.BalanceOwner)
}

// WithdrawFeeSystemBalance pays out from the fee-system pool.
func (l *Ledger) WithdrawFeeSystemBalance(ctx context.Context, caller, recipient types.Address, amount types.Amount) (*treasury.Withdrawal, error) {
	return l.withdraw(ctx, caller, recipient, amount, treasury.BalanceFeeSystem)
}

// WithdrawFundBalance pays out from the community fund pool.
func (l *Ledger) WithdrawFundBalance(ctx context.Context, caller, recipient types.Address, amount types.Amount) (*treasury.Withdrawal, error) {
	return l.withdraw(ctx, caller, recipient, amount, treasury.BalanceFund)
}

func (l *Ledger) withdraw(ctx context.Context, caller, recipient types.Address, amount types.Amount, pool treasury.BalanceType) (*treasury.Withdrawal, error) {
	if err := l.lockEngine(ctx, caller); err != nil {
		return nil, err
	}
	defer l.unlockEngine()

	if err := l.requireOwner(caller); err != nil {
		return nil, err
	}
	recipient = recipient.Normalize()
	if recipient.IsZero() {
		return nil, ErrInvalidAddress
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	balances, err := l.store.GetBalances(ctx)
	if err != nil {
		return nil, err
	}
	if balances.Get(pool) < amount {
		return nil, ErrInsufficientBalance
	}

	if err := l.payOut(ctx, recipient, amount); err != nil {
		return nil, err
	}

	if err := balances.Debit(pool, amount); err != nil {
		return nil, err
	}
	if err := l.store.UpdateBalances(ctx, balances); err != nil {
		return nil, err
	}

	w := &treasury.Withdrawal{
		ID:        id.NewWithdrawalID(),
		Recipient: recipient,
		Amount:    amount,
		Balance:   pool,
		Timestamp: time.Now().UTC(),
	}

	rec := &txlog.Record{
		ID:        id.NewTransactionID(),
		From:      l.custody,
		To:        recipient,
		Amount:    amount,
		Timestamp: w.Timestamp,
		Kind:      txlog.KindWithdrawal,
	}
	if err := l.store.AppendTransaction(ctx, rec); err != nil {
		return nil, err
	}

	l.logger.Info("treasury withdrawal",
		"pool", pool,
		"recipient", recipient,
		"amount", amount,
	)
	l.plugins.EmitWithdrawal(ctx, w)

	return w, nil
}

// BatchWithdraw executes up to treasury.MaxBatchRequests withdrawals as
// one unit. Every request is validated, and running per-pool totals are
// checked against the tracked balances, before the first transfer is
// attempted: an invalid batch changes nothing.
func (l *Ledger) BatchWithdraw(ctx context.Context, caller types.Address, requests []treasury.WithdrawRequest) (*treasury.BatchSummary, error) {
	if err := l.lockEngine(ctx, caller); err != nil {
		return nil, err
	}
	defer l.unlockEngine()

	if err := l.requireOwner(caller); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(requests) > treasury.MaxBatchRequests {
		return nil, ErrBatchTooLarge
	}

	balances, err := l.store.GetBalances(ctx)
	if err != nil {
		return nil, err
	}

	// Validation pass: running totals per pool must stay within the
	// tracked balances.
	var totals treasury.Balances
	for i, req := range requests {
		if req.Recipient.Normalize().IsZero() {
			return nil, fmt.Errorf("%w: request %d: zero recipient", ErrInvalidAddress, i)
		}
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: request %d", ErrInvalidAmount, i)
		}
		if !req.Balance.Valid() {
			return nil, fmt.Errorf("%w: request %d: unknown balance %q", ErrInvalidInput, i, req.Balance)
		}

		switch req.Balance {
		case treasury.BalanceOwner:
			if totals.Owner, err = totals.Owner.Add(req.Amount); err != nil {
				return nil, err
			}
			if totals.Owner > balances.Owner {
				return nil, fmt.Errorf("%w: owner pool at request %d", ErrInsufficientBalance, i)
			}
		case treasury.BalanceFeeSystem:
			if totals.FeeSystem, err = totals.FeeSystem.Add(req.Amount); err != nil {
				return nil, err
			}
			if totals.FeeSystem > balances.FeeSystem {
				return nil, fmt.Errorf("%w: fee pool at request %d", ErrInsufficientBalance, i)
			}
		case treasury.BalanceFund:
			if totals.Fund, err = totals.Fund.Add(req.Amount); err != nil {
				return nil, err
			}
			if totals.Fund > balances.Fund {
				return nil, fmt.Errorf("%w: fund pool at request %d", ErrInsufficientBalance, i)
			}
		}
	}

	// Execution pass. Completed transfers are committed to the books
	// immediately so the tracked balances never overstate custody.
	for i, req := range requests {
		if err := l.payOut(ctx, req.Recipient.Normalize(), req.Amount); err != nil {
			return nil, fmt.Errorf("batch aborted at request %d: %w", i, err)
		}
		if err := balances.Debit(req.Balance, req.Amount); err != nil {
			return nil, err
		}
		if err := l.store.UpdateBalances(ctx, balances); err != nil {
			return nil, err
		}

		rec := &txlog.Record{
			ID:        id.NewTransactionID(),
			From:      l.custody,
			To:        req.Recipient.Normalize(),
			Amount:    req.Amount,
			Timestamp: time.Now().UTC(),
			Kind:      txlog.KindWithdrawal,
		}
		if err := l.store.AppendTransaction(ctx, rec); err != nil {
			return nil, err
		}
	}

	total, err := types.SumAmounts(totals.Owner, totals.FeeSystem, totals.Fund)
	if err != nil {
		return nil, err
	}
	summary := &treasury.BatchSummary{
		Requests:  len(requests),
		Owner:     totals.Owner,
		FeeSystem: totals.FeeSystem,
		Fund:      totals.Fund,
		Total:     total,
	}

	l.logger.Info("batch withdrawal completed",
		"requests", summary.Requests,
		"total", summary.Total,
	)
	l.plugins.EmitBatchWithdrawal(ctx, summary)

	return summary, nil
}

// RequestEmergencyWithdraw opens the emergency timelock. The sweep
// itself is only permitted once the delay has fully elapsed.
func (l *Ledger) RequestEmergencyWithdraw(ctx context.Context, caller types.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}

	state, err := l.store.GetState(ctx)
	if err != nil {
		return err
	}
	if state.EmergencyPending() {
		return ErrEmergencyPending
	}

	state.EmergencyRequestedAt = time.Now().UTC()
	if err := l.store.UpdateState(ctx, state); err != nil {
		return err
	}

	l.logger.Warn("emergency withdraw requested",
		"matures_at", state.EmergencyRequestedAt.Add(l.emergencyDelay),
	)
	l.plugins.EmitEmergencyWithdrawRequested(ctx, state.EmergencyRequestedAt)

	return nil
}

// EmergencyWithdraw sweeps the entire custody balance to the owner once
// the timelock has matured, zeroes all three tracked pools, and clears
// the request. The sweep moves whatever custody actually holds, which
// can exceed the tracked sum; Reconcile surfaces that divergence.
func (l *Ledger) EmergencyWithdraw(ctx context.Context, caller types.Address) (types.Amount, error) {
	if err := l.lockEngine(ctx, caller); err != nil {
		return 0, err
	}
	defer l.unlockEngine()

	if err := l.requireOwner(caller); err != nil {
		return 0, err
	}

	state, err := l.store.GetState(ctx)
	if err != nil {
		return 0, err
	}
	if !state.EmergencyPending() {
		return 0, ErrEmergencyNotRequested
	}
	if time.Since(state.EmergencyRequestedAt) < l.emergencyDelay {
		return 0, ErrEmergencyNotMatured
	}

	custody, err := l.pay.BalanceOf(ctx, l.custody)
	if err != nil {
		return 0, err
	}

	if custody.IsPositive() {
		if err := l.payOut(ctx, l.owner, custody); err != nil {
			return 0, err
		}
	}

	balances, err := l.store.GetBalances(ctx)
	if err != nil {
		return 0, err
	}
	balances.Owner = 0
	balances.FeeSystem = 0
	balances.Fund = 0
	if err := l.store.UpdateBalances(ctx, balances); err != nil {
		return 0, err
	}

	state.EmergencyRequestedAt = time.Time{}
	if err := l.store.UpdateState(ctx, state); err != nil {
		return 0, err
	}

	l.logger.Warn("emergency withdraw executed",
		"swept", custody,
	)
	l.plugins.EmitEmergencyWithdrawn(ctx, custody.Int64())

	return custody, nil
}
