package memberledger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	memberledger "github.com/xraph/memberledger"
	"github.com/xraph/memberledger/paytoken"
	"github.com/xraph/memberledger/plan"
	"github.com/xraph/memberledger/store/memory"
	"github.com/xraph/memberledger/types"
)

const (
	testOwner    = types.Address("0xowner")
	testCustody  = types.Address("0xcustody")
	testDecimals = uint8(6)
)

// fixture wires a ledger over the memory store and the in-memory
// payment token, with the front-running interval disabled so tests can
// run actions back to back.
type fixture struct {
	l     *memberledger.Ledger
	store *memory.Store
	pay   *paytoken.InMemory
}

func newFixture(t *testing.T, opts ...memberledger.Option) *fixture {
	t.Helper()

	st := memory.New()
	pay := paytoken.NewInMemory(testDecimals)
	pay.SetCaller(testCustody)

	base := []memberledger.Option{
		memberledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		memberledger.WithActionInterval(0),
	}
	l := memberledger.New(st, pay, testOwner, testCustody, append(base, opts...)...)

	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Stop() })

	if err := l.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	return &fixture{l: l, store: st, pay: pay}
}

// fund mints amount to addr and approves custody to pull it.
func (f *fixture) fund(addr types.Address, amount types.Amount) {
	f.pay.Mint(addr, amount)
	f.pay.Approve(addr, testCustody, amount)
}

// register funds addr with the entry tier price and registers them.
func (f *fixture) register(t *testing.T, addr, upline types.Address) {
	t.Helper()
	f.fund(addr, tierPrice(t, 1))
	if _, err := f.l.Register(context.Background(), addr, plan.EntryPlanID, upline); err != nil {
		t.Fatalf("register %s: %v", addr, err)
	}
}

func tierPrice(t *testing.T, n int64) types.Amount {
	t.Helper()
	a, err := types.Units(n, testDecimals)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plans, err := f.l.ListPlans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != plan.DefaultPlanCount {
		t.Fatalf("expected %d plans, got %d", plan.DefaultPlanCount, len(plans))
	}

	for i, p := range plans {
		n := i + 1
		if p.ID != n {
			t.Errorf("plan %d: id = %d", n, p.ID)
		}
		if want := tierPrice(t, int64(n)); p.Price != want {
			t.Errorf("plan %d: price = %d, want %d", n, p.Price, want)
		}
		if p.MembersPerCycle != plan.MembersPerCycle {
			t.Errorf("plan %d: members per cycle = %d", n, p.MembersPerCycle)
		}
		if !p.Active {
			t.Errorf("plan %d: not active", n)
		}
		if !p.HasDefaultImage() {
			t.Errorf("plan %d: no default image", n)
		}
	}

	t.Run("Idempotent", func(t *testing.T) {
		if err := f.l.Initialize(ctx); err != nil {
			t.Fatal(err)
		}
		plans, err := f.l.ListPlans(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(plans) != plan.DefaultPlanCount {
			t.Fatalf("second Initialize changed the catalog: %d plans", len(plans))
		}
	})
}

func TestPlanManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("CreatePlanAppendsAfterRange", func(t *testing.T) {
		p, err := f.l.CreatePlan(ctx, testOwner, "Tier 17", tierPrice(t, 17), plan.MembersPerCycle)
		if err != nil {
			t.Fatal(err)
		}
		if p.ID != plan.DefaultPlanCount+1 {
			t.Fatalf("new plan id = %d", p.ID)
		}
	})

	t.Run("CreatePlanValidation", func(t *testing.T) {
		if _, err := f.l.CreatePlan(ctx, "0xintruder", "X", tierPrice(t, 1), plan.MembersPerCycle); !errors.Is(err, memberledger.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		if _, err := f.l.CreatePlan(ctx, testOwner, "", tierPrice(t, 1), plan.MembersPerCycle); !errors.Is(err, memberledger.ErrEmptyName) {
			t.Fatalf("expected ErrEmptyName, got %v", err)
		}
		if _, err := f.l.CreatePlan(ctx, testOwner, "X", 0, plan.MembersPerCycle); !errors.Is(err, memberledger.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
		if _, err := f.l.CreatePlan(ctx, testOwner, "X", tierPrice(t, 1), 5); !errors.Is(err, memberledger.ErrInvalidCycleSize) {
			t.Fatalf("expected ErrInvalidCycleSize, got %v", err)
		}
	})

	t.Run("SetPlanStatus", func(t *testing.T) {
		if err := f.l.SetPlanStatus(ctx, testOwner, 1, false); err != nil {
			t.Fatal(err)
		}
		p, err := f.l.GetPlan(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if p.Active {
			t.Fatal("plan 1 still active")
		}
		if err := f.l.SetPlanStatus(ctx, testOwner, 1, true); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("UpdateMembersPerCycleIsPinned", func(t *testing.T) {
		if err := f.l.UpdateMembersPerCycle(ctx, testOwner, 1, 8); !errors.Is(err, memberledger.ErrInvalidCycleSize) {
			t.Fatalf("expected ErrInvalidCycleSize, got %v", err)
		}
		if err := f.l.UpdateMembersPerCycle(ctx, testOwner, 1, plan.MembersPerCycle); err != nil {
			t.Fatal(err)
		}
		if err := f.l.UpdateMembersPerCycle(ctx, testOwner, 99, plan.MembersPerCycle); !errors.Is(err, memberledger.ErrInvalidPlanID) {
			t.Fatalf("expected ErrInvalidPlanID, got %v", err)
		}
	})

	t.Run("SetPlanDefaultImage", func(t *testing.T) {
		if err := f.l.SetPlanDefaultImage(ctx, testOwner, 2, ""); !errors.Is(err, memberledger.ErrEmptyURI) {
			t.Fatalf("expected ErrEmptyURI, got %v", err)
		}
		if err := f.l.SetPlanDefaultImage(ctx, testOwner, 2, "ipfs://tier2.png"); err != nil {
			t.Fatal(err)
		}
		p, err := f.l.GetPlan(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if p.DefaultImageURI != "ipfs://tier2.png" {
			t.Fatalf("image = %q", p.DefaultImageURI)
		}
	})
}

func TestPause(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "0xalice", testOwner)

	if err := f.l.SetPaused(ctx, "0xintruder"); !errors.Is(err, memberledger.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := f.l.SetPaused(ctx, testOwner); err != nil {
		t.Fatal(err)
	}
	if err := f.l.SetPaused(ctx, testOwner); !errors.Is(err, memberledger.ErrPaused) {
		t.Fatalf("expected ErrPaused on double pause, got %v", err)
	}

	// Member actions are blocked while paused.
	f.fund("0xbob", tierPrice(t, 1))
	if _, err := f.l.Register(ctx, "0xbob", plan.EntryPlanID, testOwner); !errors.Is(err, memberledger.ErrPaused) {
		t.Fatalf("expected ErrPaused, got %v", err)
	}
	if _, err := f.l.Upgrade(ctx, "0xalice", 2); !errors.Is(err, memberledger.ErrPaused) {
		t.Fatalf("expected ErrPaused, got %v", err)
	}
	if _, err := f.l.Exit(ctx, "0xalice"); !errors.Is(err, memberledger.ErrPaused) {
		t.Fatalf("expected ErrPaused, got %v", err)
	}

	// Owner withdrawals are never blocked by pause.
	if _, err := f.l.WithdrawOwnerBalance(ctx, testOwner, "0xtreasurer", 100); err != nil {
		t.Fatalf("withdrawal while paused: %v", err)
	}

	if err := f.l.RestartAfterPause(ctx, testOwner); err != nil {
		t.Fatal(err)
	}
	if err := f.l.RestartAfterPause(ctx, testOwner); !errors.Is(err, memberledger.ErrNotPaused) {
		t.Fatalf("expected ErrNotPaused, got %v", err)
	}

	if _, err := f.l.Register(ctx, "0xbob", plan.EntryPlanID, testOwner); err != nil {
		t.Fatalf("register after restart: %v", err)
	}
}

func TestStatusAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "0xalice", testOwner)
	f.register(t, "0xbob", "0xalice")

	stats, err := f.l.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.MemberCount != 2 || stats.TokenSupply != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if want := tierPrice(t, 2); stats.TotalRevenue != want {
		t.Fatalf("total revenue = %d, want %d", stats.TotalRevenue, want)
	}

	status, err := f.l.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status.Paused {
		t.Fatal("ledger reported paused")
	}
	if status.PlanCount != plan.DefaultPlanCount {
		t.Fatalf("plan count = %d", status.PlanCount)
	}
	if status.EmergencyRequested {
		t.Fatal("emergency reported without a request")
	}
}

func TestSetPriceFeedAndBaseURI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.l.SetPriceFeed(ctx, testOwner, ""); !errors.Is(err, memberledger.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if err := f.l.SetPriceFeed(ctx, testOwner, "0xFEED"); err != nil {
		t.Fatal(err)
	}
	feed, err := f.l.PriceFeed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if feed != types.Address("0xfeed") {
		t.Fatalf("price feed = %q", feed)
	}

	if err := f.l.SetBaseURI(ctx, testOwner, ""); !errors.Is(err, memberledger.ErrEmptyURI) {
		t.Fatalf("expected ErrEmptyURI, got %v", err)
	}
	if err := f.l.SetBaseURI(ctx, testOwner, "https://meta.example/"); err != nil {
		t.Fatal(err)
	}
}
