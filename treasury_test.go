package memberledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	memberledger "github.com/xraph/memberledger"
	"github.com/xraph/memberledger/treasury"
	"github.com/xraph/memberledger/types"
)

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerOnly", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "0xalice", testOwner)

		if _, err := f.l.WithdrawOwnerBalance(ctx, "0xintruder", "0xdest", 100); !errors.Is(err, memberledger.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("PaysOutAndDebitsPool", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "0xalice", testOwner) // owner pool 700_000

		w, err := f.l.WithdrawOwnerBalance(ctx, testOwner, "0xdest", 500_000)
		if err != nil {
			t.Fatal(err)
		}
		if w.Amount != 500_000 || w.Balance != treasury.BalanceOwner {
			t.Fatalf("withdrawal = %+v", w)
		}

		bal, err := f.pay.BalanceOf(ctx, "0xdest")
		if err != nil {
			t.Fatal(err)
		}
		if bal != 500_000 {
			t.Fatalf("recipient balance = %d", bal)
		}

		stats, err := f.l.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if stats.OwnerBalance != 200_000 {
			t.Fatalf("owner pool = %d, want 200000", stats.OwnerBalance)
		}
	})

	t.Run("RejectsOverdraw", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "0xalice", testOwner)

		if _, err := f.l.WithdrawFundBalance(ctx, testOwner, "0xdest", 300_000); !errors.Is(err, memberledger.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		if _, err := f.l.WithdrawFeeSystemBalance(ctx, testOwner, "", 100); !errors.Is(err, memberledger.ErrInvalidAddress) {
			t.Fatalf("expected ErrInvalidAddress, got %v", err)
		}
		if _, err := f.l.WithdrawOwnerBalance(ctx, testOwner, "0xdest", 0); !errors.Is(err, memberledger.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestBatchWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("SizeLimits", func(t *testing.T) {
		f := newFixture(t)

		if _, err := f.l.BatchWithdraw(ctx, testOwner, nil); !errors.Is(err, memberledger.ErrBatchEmpty) {
			t.Fatalf("expected ErrBatchEmpty, got %v", err)
		}

		over := make([]treasury.WithdrawRequest, treasury.MaxBatchRequests+1)
		for i := range over {
			over[i] = treasury.WithdrawRequest{Recipient: "0xdest", Amount: 1, Balance: treasury.BalanceOwner}
		}
		if _, err := f.l.BatchWithdraw(ctx, testOwner, over); !errors.Is(err, memberledger.ErrBatchTooLarge) {
			t.Fatalf("expected ErrBatchTooLarge, got %v", err)
		}
	})

	t.Run("InvalidRequestChangesNothing", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "0xalice", testOwner)

		before, err := f.l.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}

		reqs := []treasury.WithdrawRequest{
			{Recipient: "0xdest", Amount: 100_000, Balance: treasury.BalanceOwner},
			{Recipient: "", Amount: 100, Balance: treasury.BalanceOwner}, // invalid
		}
		if _, err := f.l.BatchWithdraw(ctx, testOwner, reqs); !errors.Is(err, memberledger.ErrInvalidAddress) {
			t.Fatalf("expected ErrInvalidAddress, got %v", err)
		}

		after, err := f.l.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if *after != *before {
			t.Fatalf("invalid batch mutated balances: %+v -> %+v", before, after)
		}

		bal, err := f.pay.BalanceOf(ctx, "0xdest")
		if err != nil {
			t.Fatal(err)
		}
		if bal != 0 {
			t.Fatalf("invalid batch transferred %d", bal)
		}
	})

	t.Run("RunningTotalsCheckedPerPool", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "0xalice", testOwner) // fund pool 200_000

		reqs := []treasury.WithdrawRequest{
			{Recipient: "0xdest", Amount: 150_000, Balance: treasury.BalanceFund},
			{Recipient: "0xdest", Amount: 150_000, Balance: treasury.BalanceFund}, // total 300_000 > 200_000
		}
		if _, err := f.l.BatchWithdraw(ctx, testOwner, reqs); !errors.Is(err, memberledger.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
	})

	t.Run("ExecutesWholeBatch", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "0xalice", testOwner)

		reqs := []treasury.WithdrawRequest{
			{Recipient: "0xops", Amount: 400_000, Balance: treasury.BalanceOwner},
			{Recipient: "0xfees", Amount: 100_000, Balance: treasury.BalanceFeeSystem},
			{Recipient: "0xgrants", Amount: 200_000, Balance: treasury.BalanceFund},
		}
		summary, err := f.l.BatchWithdraw(ctx, testOwner, reqs)
		if err != nil {
			t.Fatal(err)
		}
		if summary.Requests != 3 || summary.Total != 700_000 {
			t.Fatalf("summary = %+v", summary)
		}

		for _, check := range []struct {
			addr types.Address
			want types.Amount
		}{
			{"0xops", 400_000},
			{"0xfees", 100_000},
			{"0xgrants", 200_000},
		} {
			bal, err := f.pay.BalanceOf(ctx, check.addr)
			if err != nil {
				t.Fatal(err)
			}
			if bal != check.want {
				t.Errorf("%s balance = %d, want %d", check.addr, bal, check.want)
			}
		}

		rec, err := f.l.Reconcile(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Diverged {
			t.Fatalf("reconcile diverged after batch: %+v", rec)
		}
	})
}

func TestEmergencyWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresRequestFirst", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.l.EmergencyWithdraw(ctx, testOwner); !errors.Is(err, memberledger.ErrEmergencyNotRequested) {
			t.Fatalf("expected ErrEmergencyNotRequested, got %v", err)
		}
	})

	t.Run("TimelockEnforced", func(t *testing.T) {
		f := newFixture(t) // default 24h delay
		if err := f.l.RequestEmergencyWithdraw(ctx, testOwner); err != nil {
			t.Fatal(err)
		}
		if err := f.l.RequestEmergencyWithdraw(ctx, testOwner); !errors.Is(err, memberledger.ErrEmergencyPending) {
			t.Fatalf("expected ErrEmergencyPending, got %v", err)
		}
		if _, err := f.l.EmergencyWithdraw(ctx, testOwner); !errors.Is(err, memberledger.ErrEmergencyNotMatured) {
			t.Fatalf("expected ErrEmergencyNotMatured, got %v", err)
		}

		status, err := f.l.Status(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !status.EmergencyRequested || status.EmergencyMaturesIn <= 0 {
			t.Fatalf("status = %+v", status)
		}
	})

	t.Run("SweepsCustodyAndZeroesPools", func(t *testing.T) {
		f := newFixture(t, memberledger.WithEmergencyDelay(0))
		f.register(t, "0xalice", testOwner)

		if err := f.l.RequestEmergencyWithdraw(ctx, testOwner); err != nil {
			t.Fatal(err)
		}
		swept, err := f.l.EmergencyWithdraw(ctx, testOwner)
		if err != nil {
			t.Fatal(err)
		}
		if want := tierPrice(t, 1); swept != want {
			t.Fatalf("swept = %d, want %d", swept, want)
		}

		ownerBal, err := f.pay.BalanceOf(ctx, testOwner)
		if err != nil {
			t.Fatal(err)
		}
		if ownerBal != swept {
			t.Fatalf("owner received %d, want %d", ownerBal, swept)
		}

		custodyBal, err := f.pay.BalanceOf(ctx, testCustody)
		if err != nil {
			t.Fatal(err)
		}
		if custodyBal != 0 {
			t.Fatalf("custody holds %d after sweep", custodyBal)
		}

		stats, err := f.l.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if stats.OwnerBalance != 0 || stats.FeeSystemBalance != 0 || stats.FundBalance != 0 {
			t.Fatalf("pools not zeroed: %+v", stats)
		}

		// The request latch is cleared; a second sweep needs a new one.
		if _, err := f.l.EmergencyWithdraw(ctx, testOwner); !errors.Is(err, memberledger.ErrEmergencyNotRequested) {
			t.Fatalf("expected ErrEmergencyNotRequested after sweep, got %v", err)
		}
	})
}

func TestReconcileSurfacesDivergence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "0xalice", testOwner)

	// Value arriving in custody outside the ledger's bookkeeping is
	// visible but never treated as an error.
	f.pay.Mint(testCustody, 42)

	rec, err := f.l.Reconcile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Diverged {
		t.Fatal("expected divergence after a stray mint")
	}
	if diff := rec.Actual - rec.Expected; diff != 42 {
		t.Fatalf("divergence = %d, want 42", diff)
	}
}

func TestMemberHistoryRingBound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "0xalice", testOwner)

	// More withdrawals to one recipient than the ring holds; only the
	// most recent Capacity records survive, oldest overwritten first.
	for i := 0; i < 55; i++ {
		if _, err := f.l.WithdrawOwnerBalance(ctx, testOwner, "0xdest", types.Amount(i+1)); err != nil {
			t.Fatalf("withdrawal %d: %v", i, err)
		}
	}

	history, err := f.l.MemberHistory(ctx, "0xdest")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 50 {
		t.Fatalf("history length = %d, want 50", len(history))
	}

	seen := make(map[types.Amount]bool, len(history))
	for _, rec := range history {
		seen[rec.Amount] = true
	}
	for i := 1; i <= 5; i++ {
		if seen[types.Amount(i)] {
			t.Errorf("overwritten record %d still present", i)
		}
	}
	for i := 6; i <= 55; i++ {
		if !seen[types.Amount(i)] {
			t.Errorf("record %d missing", i)
		}
	}
}

func TestWithdrawalReceiptIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "0xalice", testOwner)

	w, err := f.l.WithdrawOwnerBalance(ctx, testOwner, "0xdest", 100)
	if err != nil {
		t.Fatal(err)
	}
	if got := fmt.Sprint(w.ID); len(got) == 0 {
		t.Fatal("withdrawal receipt has no id")
	}
	if w.Timestamp.After(time.Now().UTC().Add(time.Second)) {
		t.Fatalf("timestamp in the future: %v", w.Timestamp)
	}
}
