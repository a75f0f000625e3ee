package memberledger_test

import (
	"context"
	"errors"
	"testing"

	memberledger "github.com/xraph/memberledger"
	"github.com/xraph/memberledger/plan"
)

func TestUpgrade(t *testing.T) {
	ctx := context.Background()

	t.Run("MovesExactlyOneTier", func(t *testing.T) {
		f := newFixture(t, memberledger.WithUpgradeCooldown(0))
		f.register(t, "0xalice", testOwner)

		// Tier 2 costs 2, tier 1 cost 1: the delta is one whole token.
		delta := tierPrice(t, 1)
		f.fund("0xalice", delta)

		m, err := f.l.Upgrade(ctx, "0xalice", 2)
		if err != nil {
			t.Fatal(err)
		}
		if m.PlanID != 2 {
			t.Fatalf("plan after upgrade = %d", m.PlanID)
		}

		// Token metadata follows the member to the new tier; the mint
		// image is kept.
		tok, err := f.l.TokenOf(ctx, "0xalice")
		if err != nil {
			t.Fatal(err)
		}
		if tok.Metadata.PlanID != 2 || tok.Metadata.Name != "Tier 2 Membership" {
			t.Fatalf("token metadata = %+v", tok.Metadata)
		}
		if tok.Metadata.ImageURI == "" {
			t.Fatal("mint image lost on upgrade")
		}
	})

	t.Run("CannotSkipTiers", func(t *testing.T) {
		f := newFixture(t, memberledger.WithUpgradeCooldown(0))
		f.register(t, "0xalice", testOwner)

		f.fund("0xalice", tierPrice(t, 3))
		if _, err := f.l.Upgrade(ctx, "0xalice", 3); !errors.Is(err, memberledger.ErrUpgradeOutOfSequence) {
			t.Fatalf("expected ErrUpgradeOutOfSequence, got %v", err)
		}
		if _, err := f.l.Upgrade(ctx, "0xalice", 1); !errors.Is(err, memberledger.ErrUpgradeOutOfSequence) {
			t.Fatalf("downgrade: expected ErrUpgradeOutOfSequence, got %v", err)
		}
	})

	t.Run("CooldownEnforced", func(t *testing.T) {
		f := newFixture(t) // default 24h cooldown
		f.register(t, "0xalice", testOwner)

		f.fund("0xalice", tierPrice(t, 1))
		if _, err := f.l.Upgrade(ctx, "0xalice", 2); !errors.Is(err, memberledger.ErrUpgradeCooldown) {
			t.Fatalf("expected ErrUpgradeCooldown, got %v", err)
		}
	})

	t.Run("NonMemberCannotUpgrade", func(t *testing.T) {
		f := newFixture(t, memberledger.WithUpgradeCooldown(0))
		f.register(t, "0xalice", testOwner) // flip bootstrap

		if _, err := f.l.Upgrade(ctx, "0xnobody", 2); !errors.Is(err, memberledger.ErrNotMember) {
			t.Fatalf("expected ErrNotMember, got %v", err)
		}
	})

	t.Run("InactiveTargetPlan", func(t *testing.T) {
		f := newFixture(t, memberledger.WithUpgradeCooldown(0))
		f.register(t, "0xalice", testOwner)

		if err := f.l.SetPlanStatus(ctx, testOwner, 2, false); err != nil {
			t.Fatal(err)
		}
		f.fund("0xalice", tierPrice(t, 1))
		if _, err := f.l.Upgrade(ctx, "0xalice", 2); !errors.Is(err, memberledger.ErrPlanInactive) {
			t.Fatalf("expected ErrPlanInactive, got %v", err)
		}
	})

	t.Run("DistributesDeltaAtNewTierRate", func(t *testing.T) {
		f := newFixture(t, memberledger.WithUpgradeCooldown(0))
		f.register(t, "0xalice", testOwner)
		f.register(t, "0xbob", "0xalice")

		before, err := f.l.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}

		// Bob upgrades to tier 2; his sponsor alice is still at tier 1,
		// so her commission on the delta is redirected to the owner.
		delta := tierPrice(t, 1)
		f.fund("0xbob", delta)
		if _, err := f.l.Upgrade(ctx, "0xbob", 2); err != nil {
			t.Fatal(err)
		}

		after, err := f.l.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}

		// Tier 2 is in the 50% band: user 500_000 (upline 300_000
		// redirected, fund 200_000), company 500_000 (owner 400_000,
		// fee 100_000).
		if got := after.OwnerBalance - before.OwnerBalance; got != 700_000 {
			t.Errorf("owner delta = %d, want 700000", got)
		}
		if got := after.FundBalance - before.FundBalance; got != 200_000 {
			t.Errorf("fund delta = %d, want 200000", got)
		}
		if got := after.FeeSystemBalance - before.FeeSystemBalance; got != 100_000 {
			t.Errorf("fee delta = %d, want 100000", got)
		}
		if after.TotalCommission != before.TotalCommission {
			t.Errorf("commission changed for a lagging sponsor")
		}
		if got := after.TotalRevenue - before.TotalRevenue; got != delta {
			t.Errorf("revenue delta = %d, want %d", got, delta)
		}
	})

	t.Run("UpgradeAdvancesTargetCycle", func(t *testing.T) {
		f := newFixture(t, memberledger.WithUpgradeCooldown(0))
		f.register(t, "0xalice", testOwner)

		f.fund("0xalice", tierPrice(t, 1))
		if _, err := f.l.Upgrade(ctx, "0xalice", 2); err != nil {
			t.Fatal(err)
		}

		info, err := f.l.CycleInfo(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if info.MembersInCurrentCycle != 1 {
			t.Fatalf("tier 2 cycle fill = %d, want 1", info.MembersInCurrentCycle)
		}

		// The entry tier's cycle is untouched by the upgrade.
		entry, err := f.l.CycleInfo(ctx, plan.EntryPlanID)
		if err != nil {
			t.Fatal(err)
		}
		if entry.MembersInCurrentCycle != 1 {
			t.Fatalf("entry cycle fill = %d, want 1", entry.MembersInCurrentCycle)
		}
	})
}
