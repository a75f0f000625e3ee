package memberledger

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/memberledger/distribution"
	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/txlog"
	"github.com/xraph/memberledger/types"
)

// distribute applies the payment split for a completed registration or
// upgrade. The funds are already in custody when this runs.
//
// The upline share is paid out immediately when the upline is a member
// whose tier is at or above the payer's; otherwise it is redirected to
// the owner's tracked balance. The fund, owner and fee shares stay in
// custody as tracked balances.
func (l *Ledger) distribute(ctx context.Context, payer, upline types.Address, amount types.Amount, payerTier int) error {
	split, err := distribution.Compute(amount, payerTier)
	if err != nil {
		return err
	}

	balances, err := l.store.GetBalances(ctx)
	if err != nil {
		return err
	}

	if balances.TotalRevenue, err = balances.TotalRevenue.Add(amount); err != nil {
		return err
	}
	if balances.Owner, err = balances.Owner.Add(split.OwnerShare); err != nil {
		return err
	}
	if balances.FeeSystem, err = balances.FeeSystem.Add(split.FeeShare); err != nil {
		return err
	}
	if balances.Fund, err = balances.Fund.Add(split.FundShare); err != nil {
		return err
	}

	paid, err := l.payUpline(ctx, payer, upline, split.UplineShare, payerTier)
	if err != nil {
		return err
	}
	if paid {
		if balances.TotalCommission, err = balances.TotalCommission.Add(split.UplineShare); err != nil {
			return err
		}
	} else {
		// Unqualified upline: their cut accrues to the owner balance.
		if balances.Owner, err = balances.Owner.Add(split.UplineShare); err != nil {
			return err
		}
		l.plugins.EmitCommissionRedirected(ctx, string(upline), string(payer), split.UplineShare.Int64())
	}

	return l.store.UpdateBalances(ctx, balances)
}

// payUpline pays the upline share when the upline qualifies: they must
// hold a member record at a tier no lower than the payer's. The owner
// and the zero address never qualify (their share stays in custody).
func (l *Ledger) payUpline(ctx context.Context, payer, upline types.Address, share types.Amount, payerTier int) (bool, error) {
	if share.IsZero() {
		return false, nil
	}
	if upline.IsZero() || upline.Equal(l.owner) {
		return false, nil
	}

	um, err := l.store.GetMember(ctx, upline)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return false, nil
		}
		return false, err
	}
	if um.PlanID < payerTier {
		return false, nil
	}

	if err := l.payOut(ctx, upline, share); err != nil {
		return false, err
	}

	rec := &txlog.Record{
		ID:        id.NewTransactionID(),
		From:      payer,
		To:        upline,
		Amount:    share,
		Timestamp: time.Now().UTC(),
		Kind:      txlog.KindReferral,
	}
	if err := l.store.AppendTransaction(ctx, rec); err != nil {
		return false, err
	}

	um.TotalReferrals++
	if um.TotalEarnings, err = um.TotalEarnings.Add(share); err != nil {
		return false, err
	}
	um.Touch()
	if err := l.store.UpdateMember(ctx, um); err != nil {
		return false, err
	}

	l.logger.Debug("commission paid",
		"upline", upline,
		"payer", payer,
		"amount", share,
	)
	l.plugins.EmitCommissionPaid(ctx, string(upline), string(payer), share.Int64())

	return true, nil
}
