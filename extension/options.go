package extension

import (
	"time"

	memberledger "github.com/xraph/memberledger"
	"github.com/xraph/memberledger/paytoken"
	"github.com/xraph/memberledger/plugin"
	"github.com/xraph/memberledger/store"
)

// Option configures the Memberledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithPaymentToken sets the external payment token used for all transfers.
func WithPaymentToken(t paytoken.Token) Option {
	return func(e *Extension) {
		e.pay = t
	}
}

// WithLedgerOption passes a memberledger.Option through to the underlying engine.
func WithLedgerOption(opt memberledger.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, memberledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithOwner sets the treasury owner address.
func WithOwner(addr string) Option {
	return func(e *Extension) { e.config.Owner = addr }
}

// WithCustody sets the custody address holding pooled funds.
func WithCustody(addr string) Option {
	return func(e *Extension) { e.config.Custody = addr }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithAutoInitialize creates the sixteen-tier plan catalog on start.
func WithAutoInitialize() Option {
	return func(e *Extension) { e.config.AutoInitialize = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithUpgradeCooldown sets the minimum time between tier upgrades.
func WithUpgradeCooldown(d time.Duration) Option {
	return func(e *Extension) { e.config.UpgradeCooldown = d }
}

// WithExitLock sets how long after registration exit is blocked.
func WithExitLock(d time.Duration) Option {
	return func(e *Extension) { e.config.ExitLock = d }
}

// WithEmergencyDelay sets the emergency withdrawal timelock.
func WithEmergencyDelay(d time.Duration) Option {
	return func(e *Extension) { e.config.EmergencyDelay = d }
}

// WithActionInterval sets the per-address action rate limit interval.
func WithActionInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.ActionInterval = d }
}

// WithPlanImageBase sets the URI prefix for generated plan default images.
func WithPlanImageBase(base string) Option {
	return func(e *Extension) { e.config.PlanImageBase = base }
}
