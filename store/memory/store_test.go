package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	ledger "github.com/xraph/memberledger"
	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/member"
	"github.com/xraph/memberledger/plan"
	"github.com/xraph/memberledger/store/memory"
	"github.com/xraph/memberledger/token"
	"github.com/xraph/memberledger/txlog"
	"github.com/xraph/memberledger/types"
)

func TestPlanCRUD(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	p := &plan.Plan{
		Entity:          types.NewEntity(),
		ID:              1,
		Name:            "Tier 1",
		Price:           1_000_000,
		MembersPerCycle: plan.MembersPerCycle,
		Active:          true,
	}
	if err := s.CreatePlan(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := s.CreatePlan(ctx, p); !errors.Is(err, ledger.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetPlan(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Tier 1" {
		t.Fatalf("name = %q", got.Name)
	}

	// Reads are copies: mutating the result must not leak back.
	got.Name = "mutated"
	again, err := s.GetPlan(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "Tier 1" {
		t.Fatal("stored plan mutated through a read copy")
	}

	if _, err := s.GetPlan(ctx, 99); !errors.Is(err, ledger.ErrInvalidPlanID) {
		t.Fatalf("expected ErrInvalidPlanID, got %v", err)
	}

	got.Name = "Renamed"
	got.ID = 1
	if err := s.UpdatePlan(ctx, got); err != nil {
		t.Fatal(err)
	}
	renamed, err := s.GetPlan(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "Renamed" {
		t.Fatalf("name after update = %q", renamed.Name)
	}

	count, err := s.CountPlans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}

	// Creating a plan seeds its cycle info at cycle one.
	info, err := s.GetCycleInfo(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if info.CurrentCycle != 1 || info.MembersInCurrentCycle != 0 {
		t.Fatalf("seeded cycle info = %+v", info)
	}
}

func TestListPlansOrdered(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	// Insert out of order; ListPlans returns tier order.
	for _, n := range []int{3, 1, 2} {
		p := &plan.Plan{
			Entity:          types.NewEntity(),
			ID:              n,
			Name:            fmt.Sprintf("Tier %d", n),
			Price:           types.Amount(n),
			MembersPerCycle: plan.MembersPerCycle,
			Active:          true,
		}
		if err := s.CreatePlan(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	plans, err := s.ListPlans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range plans {
		if p.ID != i+1 {
			t.Fatalf("position %d holds plan %d", i, p.ID)
		}
	}
}

func TestMemberCRUD(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	m := &member.Member{
		Entity:       types.NewEntity(),
		Address:      "0xalice",
		Upline:       "0xowner",
		PlanID:       1,
		CycleNumber:  1,
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.CreateMember(ctx, m); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateMember(ctx, m); !errors.Is(err, ledger.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}

	got, err := s.GetMember(ctx, "0xalice")
	if err != nil {
		t.Fatal(err)
	}
	got.PlanID = 2
	if err := s.UpdateMember(ctx, got); err != nil {
		t.Fatal(err)
	}
	upgraded, err := s.GetMember(ctx, "0xalice")
	if err != nil {
		t.Fatal(err)
	}
	if upgraded.PlanID != 2 {
		t.Fatalf("plan = %d", upgraded.PlanID)
	}

	if _, err := s.GetMember(ctx, "0xnobody"); !errors.Is(err, ledger.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	if err := s.DeleteMember(ctx, "0xalice"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetMember(ctx, "0xalice"); !errors.Is(err, ledger.ErrNotMember) {
		t.Fatalf("expected ErrNotMember after delete, got %v", err)
	}

	count, err := s.CountMembers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("count = %d", count)
	}
}

func TestLastAction(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	last, err := s.GetLastAction(ctx, "0xalice")
	if err != nil {
		t.Fatal(err)
	}
	if !last.IsZero() {
		t.Fatalf("unset last action = %v", last)
	}

	at := time.Now().UTC()
	if err := s.SetLastAction(ctx, "0xalice", at); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetLastAction(ctx, "0xalice")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(at) {
		t.Fatalf("last action = %v, want %v", got, at)
	}
}

func TestTokenLifecycle(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	mint := func(owner types.Address) *token.Token {
		tok := &token.Token{
			ID:    id.NewTokenID(),
			Owner: owner,
			Metadata: token.Metadata{
				Name:      "Tier 1 Membership",
				PlanID:    1,
				CreatedAt: time.Now().UTC(),
			},
		}
		if err := s.CreateToken(ctx, tok); err != nil {
			t.Fatal(err)
		}
		return tok
	}

	a := mint("0xalice")
	b := mint("0xbob")
	c := mint("0xcarol")

	got, err := s.GetTokenByOwner(ctx, "0xbob")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != b.ID {
		t.Fatalf("token by owner = %v", got.ID)
	}

	// Enumeration follows mint order.
	for i, want := range []*token.Token{a, b, c} {
		tok, err := s.TokenByIndex(ctx, i)
		if err != nil {
			t.Fatal(err)
		}
		if tok.ID != want.ID {
			t.Fatalf("index %d = %v, want %v", i, tok.ID, want.ID)
		}
	}

	// Metadata updates are visible through every lookup path.
	md := b.Metadata
	md.Name = "Tier 2 Membership"
	md.PlanID = 2
	if err := s.UpdateTokenMetadata(ctx, b.ID, md); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetToken(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata.PlanID != 2 {
		t.Fatalf("metadata after update = %+v", got.Metadata)
	}

	// Burning the middle token compacts the enumeration.
	if err := s.DeleteToken(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	count, err := s.CountTokens(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("count after burn = %d", count)
	}
	tok, err := s.TokenByIndex(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if tok.ID != c.ID {
		t.Fatalf("index 1 after burn = %v, want %v", tok.ID, c.ID)
	}
	if _, err := s.TokenByIndex(ctx, 2); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound past the end, got %v", err)
	}
	if _, err := s.GetTokenByOwner(ctx, "0xbob"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for burned owner, got %v", err)
	}
}

func TestTransactionRing(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	append55 := func(recipient types.Address) {
		for i := 1; i <= 55; i++ {
			rec := &txlog.Record{
				ID:        id.NewTransactionID(),
				From:      "0xcustody",
				To:        recipient,
				Amount:    types.Amount(i),
				Timestamp: time.Now().UTC(),
				Kind:      txlog.KindWithdrawal,
			}
			if err := s.AppendTransaction(ctx, rec); err != nil {
				t.Fatal(err)
			}
		}
	}
	append55("0xalice")

	records, err := s.ListTransactions(ctx, "0xalice")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != txlog.Capacity {
		t.Fatalf("ring holds %d records, want %d", len(records), txlog.Capacity)
	}

	// 55 appends into a 50-slot ring: entries 51..55 overwrote slots
	// 0..4, the rest hold 6..50 in their original slots.
	for i, rec := range records {
		var want types.Amount
		if i < 5 {
			want = types.Amount(51 + i)
		} else {
			want = types.Amount(i + 1)
		}
		if rec.Amount != want {
			t.Fatalf("slot %d amount = %d, want %d", i, rec.Amount, want)
		}
	}

	count, err := s.CountTransactions(ctx, "0xalice")
	if err != nil {
		t.Fatal(err)
	}
	if count != txlog.Capacity {
		t.Fatalf("count = %d", count)
	}

	// Rings are per recipient.
	count, err = s.CountTransactions(ctx, "0xbob")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("other recipient count = %d", count)
	}
}

func TestBalancesAndState(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	b, err := s.GetBalances(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if b.Owner != 0 || b.TotalRevenue != 0 {
		t.Fatalf("fresh balances = %+v", b)
	}

	b.Owner = 700_000
	b.TotalRevenue = 1_000_000
	if err := s.UpdateBalances(ctx, b); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetBalances(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Owner != 700_000 || got.TotalRevenue != 1_000_000 {
		t.Fatalf("balances = %+v", got)
	}

	st, err := s.GetState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Bootstrap != types.AwaitingBootstrap {
		t.Fatalf("fresh state bootstrap = %q", st.Bootstrap)
	}
	if st.Paused {
		t.Fatal("fresh state paused")
	}

	st.Bootstrap = types.Active
	st.Paused = true
	st.EmergencyRequestedAt = time.Now().UTC()
	if err := s.UpdateState(ctx, st); err != nil {
		t.Fatal(err)
	}
	got2, err := s.GetState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got2.Bootstrap != types.Active || !got2.Paused || !got2.EmergencyPending() {
		t.Fatalf("state = %+v", got2)
	}
}
