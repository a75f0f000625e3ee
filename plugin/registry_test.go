package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/xraph/memberledger/plugin"
)

// memberHooks implements a subset of the hook interfaces.
type memberHooks struct {
	name        string
	registered  int
	exited      int
	commissions []int64
}

func (h *memberHooks) Name() string { return h.name }

func (h *memberHooks) OnMemberRegistered(_ context.Context, _ interface{}) error {
	h.registered++
	return nil
}

func (h *memberHooks) OnMemberExited(_ context.Context, _ string, _ int64) error {
	h.exited++
	return nil
}

func (h *memberHooks) OnCommissionPaid(_ context.Context, _, _ string, amount int64) error {
	h.commissions = append(h.commissions, amount)
	return nil
}

// failingHooks returns an error from every hook it implements. Emission
// must swallow the error and keep going.
type failingHooks struct{}

func (failingHooks) Name() string { return "failing" }

func (failingHooks) OnMemberRegistered(_ context.Context, _ interface{}) error {
	return errors.New("boom")
}

func newRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	r.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r
}

func TestRegistryDispatch(t *testing.T) {
	r := newRegistry()
	h := &memberHooks{name: "hooks"}
	if err := r.Register(h); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	r.EmitMemberRegistered(ctx, nil)
	r.EmitMemberRegistered(ctx, nil)
	r.EmitCommissionPaid(ctx, "0xupline", "0xpayer", 300)

	// Events the plugin does not implement dispatch to nobody.
	r.EmitCycleRollover(ctx, 1, 2)
	r.EmitPauseChanged(ctx, true)

	if h.registered != 2 {
		t.Errorf("registered = %d, want 2", h.registered)
	}
	if h.exited != 0 {
		t.Errorf("exited = %d, want 0", h.exited)
	}
	if len(h.commissions) != 1 || h.commissions[0] != 300 {
		t.Errorf("commissions = %v", h.commissions)
	}
}

func TestRegistryDuplicateName(t *testing.T) {
	r := newRegistry()
	if err := r.Register(&memberHooks{name: "dup"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&memberHooks{name: "dup"}); err == nil {
		t.Fatal("duplicate registration accepted")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := newRegistry()
	a := &memberHooks{name: "a"}
	b := &memberHooks{name: "b"}
	for _, p := range []plugin.Plugin{a, b} {
		if err := r.Register(p); err != nil {
			t.Fatal(err)
		}
	}

	if r.Count() != 2 {
		t.Fatalf("count = %d", r.Count())
	}
	if got := r.Get("b"); got != plugin.Plugin(b) {
		t.Fatalf("Get(b) = %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Fatalf("Get(missing) = %v", got)
	}
	if len(r.List()) != 2 {
		t.Fatalf("list = %v", r.List())
	}
}

func TestRegistrySurvivesFailingHook(t *testing.T) {
	r := newRegistry()
	h := &memberHooks{name: "hooks"}
	if err := r.Register(failingHooks{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(h); err != nil {
		t.Fatal(err)
	}

	// The failing plugin must not stop dispatch to the next one.
	r.EmitMemberRegistered(context.Background(), nil)
	if h.registered != 1 {
		t.Fatalf("registered = %d, want 1", h.registered)
	}
}
