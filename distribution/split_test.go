package distribution_test

import (
	"errors"
	"testing"

	"github.com/xraph/memberledger/distribution"
	"github.com/xraph/memberledger/types"
)

func TestUserPercent(t *testing.T) {
	tests := []struct {
		tier int
		want int64
	}{
		{1, 50}, {4, 50},
		{5, 55}, {8, 55},
		{9, 58}, {12, 58},
		{13, 60}, {16, 60},
	}

	for _, tt := range tests {
		got, err := distribution.UserPercent(tt.tier)
		if err != nil {
			t.Fatalf("UserPercent(%d) failed: %v", tt.tier, err)
		}
		if got != tt.want {
			t.Errorf("UserPercent(%d) = %d, want %d", tt.tier, got, tt.want)
		}
	}

	for _, tier := range []int{0, -1, 17} {
		if _, err := distribution.UserPercent(tier); !errors.Is(err, distribution.ErrInvalidTier) {
			t.Errorf("UserPercent(%d): expected ErrInvalidTier, got %v", tier, err)
		}
	}
}

func TestComputeExactness(t *testing.T) {
	// Every tier, with amounts chosen to force floor remainders.
	amounts := []types.Amount{1, 7, 99, 100, 101, 999, 1_000_000, 123_456_789}

	for tier := 1; tier <= 16; tier++ {
		for _, amount := range amounts {
			s, err := distribution.Compute(amount, tier)
			if err != nil {
				t.Fatalf("Compute(%d, tier %d) failed: %v", amount, tier, err)
			}

			total := s.UplineShare + s.FundShare + s.OwnerShare + s.FeeShare
			if total != amount {
				t.Errorf("tier %d amount %d: shares sum to %d", tier, amount, total)
			}
		}
	}
}

func TestComputeKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		amount types.Amount
		tier   int
		want   distribution.Split
	}{
		{
			// 50/50: user 50, company 50. Upline 30, fund 20.
			// Owner 40, fee 10.
			name:   "tier 1 round",
			amount: 100,
			tier:   1,
			want:   distribution.Split{Amount: 100, UplineShare: 30, FundShare: 20, OwnerShare: 40, FeeShare: 10},
		},
		{
			// 55/45: user floor(101*55/100)=55, company 46.
			// Upline floor(55*60/100)=33, fund 22. Owner floor(46*80/100)=36, fee 10.
			name:   "tier 5 with remainder",
			amount: 101,
			tier:   5,
			want:   distribution.Split{Amount: 101, UplineShare: 33, FundShare: 22, OwnerShare: 36, FeeShare: 10},
		},
		{
			// 60/40 top band: user 60, company 40. Upline 36, fund 24.
			// Owner 32, fee 8.
			name:   "tier 16 round",
			amount: 100,
			tier:   16,
			want:   distribution.Split{Amount: 100, UplineShare: 36, FundShare: 24, OwnerShare: 32, FeeShare: 8},
		},
		{
			// Tiny amount: user floor(1*50/100)=0, everything to company.
			name:   "one unit",
			amount: 1,
			tier:   1,
			want:   distribution.Split{Amount: 1, UplineShare: 0, FundShare: 0, OwnerShare: 0, FeeShare: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := distribution.Compute(tt.amount, tt.tier)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compute(%d, %d) = %+v, want %+v", tt.amount, tt.tier, got, tt.want)
			}
		})
	}
}
