// Package distribution implements the deterministic payment split
// between the upline, the community fund, the owner balance, and the
// fee-system balance.
package distribution

import (
	"errors"
	"fmt"

	"github.com/xraph/memberledger/types"
)

// Company-share sub-split: 80% to the owner balance, 20% to the fee
// system. User-share sub-split: 60% to the upline, 40% to the
// community fund.
const (
	ownerPercentOfCompany = 80
	uplinePercentOfUser   = 60
)

// ErrInvalidTier indicates a payer tier outside [1,16].
var ErrInvalidTier = errors.New("distribution: payer tier out of range")

// ErrSplitMismatch indicates the computed shares do not sum back to the
// input amount. This cannot happen with floor/remainder arithmetic and
// is asserted anyway: a mismatch means corrupted accounting.
var ErrSplitMismatch = errors.New("distribution: shares do not sum to amount")

// Split is the exact four-way partition of one payment.
// UplineShare + FundShare + OwnerShare + FeeShare == Amount always.
type Split struct {
	Amount      types.Amount `json:"amount"`
	UplineShare types.Amount `json:"upline_share"`
	FundShare   types.Amount `json:"fund_share"`
	OwnerShare  types.Amount `json:"owner_share"`
	FeeShare    types.Amount `json:"fee_share"`
}

// UserPercent returns the member-side percentage for a payer tier.
// Tiers 1-4 split 50/50 with the company, 5-8 55/45, 9-12 58/42,
// 13-16 60/40.
func UserPercent(payerTier int) (int64, error) {
	switch {
	case payerTier >= 1 && payerTier <= 4:
		return 50, nil
	case payerTier >= 5 && payerTier <= 8:
		return 55, nil
	case payerTier >= 9 && payerTier <= 12:
		return 58, nil
	case payerTier >= 13 && payerTier <= 16:
		return 60, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidTier, payerTier)
	}
}

// Compute partitions amount for a payer at the given tier.
//
// The user share is floored; the company share is the remainder rather
// than an independent computation, so no dust is lost to rounding.
// Within the company share the floor remainder goes to the fee system;
// within the user share it goes to the community fund.
func Compute(amount types.Amount, payerTier int) (Split, error) {
	userPct, err := UserPercent(payerTier)
	if err != nil {
		return Split{}, err
	}

	userShare, err := amount.Percent(userPct)
	if err != nil {
		return Split{}, err
	}
	companyShare, err := amount.Sub(userShare)
	if err != nil {
		return Split{}, err
	}

	ownerShare, err := companyShare.Percent(ownerPercentOfCompany)
	if err != nil {
		return Split{}, err
	}
	feeShare, err := companyShare.Sub(ownerShare)
	if err != nil {
		return Split{}, err
	}

	uplineShare, err := userShare.Percent(uplinePercentOfUser)
	if err != nil {
		return Split{}, err
	}
	fundShare, err := userShare.Sub(uplineShare)
	if err != nil {
		return Split{}, err
	}

	s := Split{
		Amount:      amount,
		UplineShare: uplineShare,
		FundShare:   fundShare,
		OwnerShare:  ownerShare,
		FeeShare:    feeShare,
	}

	total, err := types.SumAmounts(s.UplineShare, s.FundShare, s.OwnerShare, s.FeeShare)
	if err != nil {
		return Split{}, err
	}
	if total != amount {
		return Split{}, fmt.Errorf("%w: %s != %s", ErrSplitMismatch, total, amount)
	}

	return s, nil
}
