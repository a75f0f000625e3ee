package memberledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/memberledger/paytoken"
	"github.com/xraph/memberledger/plan"
	"github.com/xraph/memberledger/plugin"
	"github.com/xraph/memberledger/store"
	"github.com/xraph/memberledger/types"
)

// Default timing parameters. All are wall-clock gates evaluated at the
// start of an operation, never suspendable waits.
const (
	DefaultUpgradeCooldown = 24 * time.Hour
	DefaultExitLock        = 30 * 24 * time.Hour
	DefaultEmergencyDelay  = 24 * time.Hour
	DefaultActionInterval  = time.Minute
	MaxReferralDepth       = 10
)

// Ledger is the membership ledger engine. All state-changing entry
// points are serialized through a single non-blocking lock: a second
// call arriving while one is in flight is rejected with
// ErrReentrantCall rather than queued, since the payment token is an
// untrusted collaborator that may attempt to call back in.
type Ledger struct {
	store   store.Store
	pay     paytoken.Token
	plugins *plugin.Registry
	logger  *slog.Logger

	owner   types.Address
	custody types.Address

	decimals uint8

	// Configuration
	upgradeCooldown time.Duration
	exitLock        time.Duration
	emergencyDelay  time.Duration
	actionInterval  time.Duration
	planImageBase   string

	op sync.Mutex // reentrancy + serialization guard
}

// New creates a new Ledger instance. The owner address controls plan
// administration and the treasury; the custody address is the account
// the payment token holds the ledger's funds under.
func New(s store.Store, pay paytoken.Token, owner, custody types.Address, opts ...Option) *Ledger {
	l := &Ledger{
		store:           s,
		pay:             pay,
		plugins:         plugin.NewRegistry(),
		logger:          slog.Default(),
		owner:           owner.Normalize(),
		custody:         custody.Normalize(),
		upgradeCooldown: DefaultUpgradeCooldown,
		exitLock:        DefaultExitLock,
		emergencyDelay:  DefaultEmergencyDelay,
		actionInterval:  DefaultActionInterval,
		planImageBase:   "plans/",
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithUpgradeCooldown overrides the per-member upgrade cooldown.
func WithUpgradeCooldown(d time.Duration) Option {
	return func(l *Ledger) {
		l.upgradeCooldown = d
	}
}

// WithExitLock overrides the minimum membership period before exit.
func WithExitLock(d time.Duration) Option {
	return func(l *Ledger) {
		l.exitLock = d
	}
}

// WithEmergencyDelay overrides the emergency-withdraw timelock.
func WithEmergencyDelay(d time.Duration) Option {
	return func(l *Ledger) {
		l.emergencyDelay = d
	}
}

// WithActionInterval overrides the per-address front-running delay.
func WithActionInterval(d time.Duration) Option {
	return func(l *Ledger) {
		l.actionInterval = d
	}
}

// WithPlanImageBase sets the URI prefix used for the default plan
// images created at initialization.
func WithPlanImageBase(base string) Option {
	return func(l *Ledger) {
		l.planImageBase = base
	}
}

// Owner returns the ledger's owner address.
func (l *Ledger) Owner() types.Address { return l.owner }

// Custody returns the address the payment token holds ledger funds under.
func (l *Ledger) Custody() types.Address { return l.custody }

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("memberledger started",
		"owner", l.owner,
		"upgrade_cooldown", l.upgradeCooldown,
		"exit_lock", l.exitLock,
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// Initialize creates the default plan catalog: DefaultPlanCount tiers
// with price of tier n equal to n whole payment tokens, four-member
// cycles, and a distinct default image per tier. It is idempotent:
// a ledger that already has plans is left untouched.
func (l *Ledger) Initialize(ctx context.Context) error {
	decimals, err := l.pay.Decimals(ctx)
	if err != nil {
		return fmt.Errorf("memberledger: read payment token decimals: %w", err)
	}
	if decimals == 0 {
		return ErrBadDecimals
	}
	l.decimals = decimals

	count, err := l.store.CountPlans(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for n := 1; n <= plan.DefaultPlanCount; n++ {
		price, err := types.Units(int64(n), decimals)
		if err != nil {
			return fmt.Errorf("memberledger: price for tier %d: %w", n, err)
		}

		p := &plan.Plan{
			Entity:          types.NewEntity(),
			ID:              n,
			Name:            fmt.Sprintf("Tier %d", n),
			Price:           price,
			MembersPerCycle: plan.MembersPerCycle,
			Active:          true,
			DefaultImageURI: fmt.Sprintf("%s%d.png", l.planImageBase, n),
		}
		if err := l.store.CreatePlan(ctx, p); err != nil {
			return err
		}
		l.plugins.EmitPlanCreated(ctx, p)
	}

	l.logger.Info("plan catalog initialized",
		"plans", plan.DefaultPlanCount,
		"decimals", decimals,
	)

	return nil
}

// ──────────────────────────────────────────────────
// Plan Management (owner-only)
// ──────────────────────────────────────────────────

// CreatePlan appends a new plan after the existing range. Price must be
// positive, the name non-empty, and the cycle capacity the fixed
// constant.
func (l *Ledger) CreatePlan(ctx context.Context, caller types.Address, name string, price types.Amount, membersPerCycle int) (*plan.Plan, error) {
	if err := l.requireOwner(caller); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if !price.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if membersPerCycle != plan.MembersPerCycle {
		return nil, ErrInvalidCycleSize
	}

	count, err := l.store.CountPlans(ctx)
	if err != nil {
		return nil, err
	}

	p := &plan.Plan{
		Entity:          types.NewEntity(),
		ID:              count + 1,
		Name:            name,
		Price:           price,
		MembersPerCycle: membersPerCycle,
		Active:          true,
	}
	if err := l.store.CreatePlan(ctx, p); err != nil {
		return nil, err
	}

	l.plugins.EmitPlanCreated(ctx, p)
	return p, nil
}

// SetPlanStatus activates or deactivates a plan.
func (l *Ledger) SetPlanStatus(ctx context.Context, caller types.Address, planID int, active bool) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}

	p, err := l.store.GetPlan(ctx, planID)
	if err != nil {
		return err
	}

	p.Active = active
	p.Touch()
	if err := l.store.UpdatePlan(ctx, p); err != nil {
		return err
	}

	l.plugins.EmitPlanStatusChanged(ctx, planID, active)
	return nil
}

// UpdateMembersPerCycle only accepts the fixed cycle capacity: the
// value is pinned in this version and the operation documents that by
// rejecting anything else.
func (l *Ledger) UpdateMembersPerCycle(ctx context.Context, caller types.Address, planID, value int) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if value != plan.MembersPerCycle {
		return ErrInvalidCycleSize
	}

	// Range check only; the stored value already equals the constant.
	_, err := l.store.GetPlan(ctx, planID)
	return err
}

// SetPlanDefaultImage sets the image minted onto new tokens for a plan.
// Registration into a tier is blocked until its default image is set.
func (l *Ledger) SetPlanDefaultImage(ctx context.Context, caller types.Address, planID int, uri string) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if uri == "" {
		return ErrEmptyURI
	}

	p, err := l.store.GetPlan(ctx, planID)
	if err != nil {
		return err
	}

	p.DefaultImageURI = uri
	p.Touch()
	return l.store.UpdatePlan(ctx, p)
}

// ──────────────────────────────────────────────────
// Pause and administrative state (owner-only)
// ──────────────────────────────────────────────────

// SetPaused pauses the ledger. Registration, upgrade, and exit are
// blocked while paused; owner withdrawals never are.
func (l *Ledger) SetPaused(ctx context.Context, caller types.Address) error {
	return l.setPauseState(ctx, caller, true)
}

// RestartAfterPause resumes a paused ledger.
func (l *Ledger) RestartAfterPause(ctx context.Context, caller types.Address) error {
	return l.setPauseState(ctx, caller, false)
}

func (l *Ledger) setPauseState(ctx context.Context, caller types.Address, paused bool) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}

	state, err := l.store.GetState(ctx)
	if err != nil {
		return err
	}
	if state.Paused == paused {
		if paused {
			return ErrPaused
		}
		return ErrNotPaused
	}

	state.Paused = paused
	if err := l.store.UpdateState(ctx, state); err != nil {
		return err
	}

	l.logger.Info("pause state changed", "paused", paused)
	l.plugins.EmitPauseChanged(ctx, paused)
	return nil
}

// SetPriceFeed stores a price feed address. The address is stored but
// not used by any computation in this version.
func (l *Ledger) SetPriceFeed(ctx context.Context, caller, feed types.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if feed.IsZero() {
		return ErrInvalidAddress
	}

	state, err := l.store.GetState(ctx)
	if err != nil {
		return err
	}
	state.PriceFeed = feed.Normalize()
	return l.store.UpdateState(ctx, state)
}

// PriceFeed returns the stored price feed address.
func (l *Ledger) PriceFeed(ctx context.Context) (types.Address, error) {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return types.ZeroAddress, err
	}
	return state.PriceFeed, nil
}

// SetBaseURI sets the base URI prepended to token descriptor paths.
func (l *Ledger) SetBaseURI(ctx context.Context, caller types.Address, uri string) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if uri == "" {
		return ErrEmptyURI
	}

	state, err := l.store.GetState(ctx)
	if err != nil {
		return err
	}
	state.BaseURI = uri
	return l.store.UpdateState(ctx, state)
}

// BaseURI returns the stored token descriptor base URI.
func (l *Ledger) BaseURI(ctx context.Context) (string, error) {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return "", err
	}
	return state.BaseURI, nil
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func (l *Ledger) requireOwner(caller types.Address) error {
	if caller.Normalize() != l.owner {
		return ErrNotOwner
	}
	return nil
}

func (l *Ledger) requireActive(ctx context.Context) (*types.LedgerState, error) {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return nil, err
	}
	if state.Paused {
		return nil, ErrPaused
	}
	return state, nil
}
