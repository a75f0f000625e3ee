package extension

import "time"

// Config holds the Memberledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.memberledger" or "memberledger" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// AutoInitialize creates the sixteen-tier plan catalog on start when
	// the plan registry is empty.
	AutoInitialize bool `json:"auto_initialize" mapstructure:"auto_initialize" yaml:"auto_initialize"`

	// Owner is the treasury owner address.
	Owner string `json:"owner" mapstructure:"owner" yaml:"owner"`

	// Custody is the address holding pooled payment token funds.
	Custody string `json:"custody" mapstructure:"custody" yaml:"custody"`

	// UpgradeCooldown is the minimum time between tier upgrades for one
	// member (default: 24h).
	UpgradeCooldown time.Duration `json:"upgrade_cooldown" mapstructure:"upgrade_cooldown" yaml:"upgrade_cooldown"`

	// ExitLock is how long after registration a member must wait before
	// exiting (default: 720h).
	ExitLock time.Duration `json:"exit_lock" mapstructure:"exit_lock" yaml:"exit_lock"`

	// EmergencyDelay is the timelock between an emergency withdrawal
	// request and its execution (default: 24h).
	EmergencyDelay time.Duration `json:"emergency_delay" mapstructure:"emergency_delay" yaml:"emergency_delay"`

	// ActionInterval is the minimum time between guarded actions from one
	// address (default: 1m).
	ActionInterval time.Duration `json:"action_interval" mapstructure:"action_interval" yaml:"action_interval"`

	// PlanImageBase is the URI prefix for generated plan default images.
	PlanImageBase string `json:"plan_image_base" mapstructure:"plan_image_base" yaml:"plan_image_base"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UpgradeCooldown: 24 * time.Hour,
		ExitLock:        30 * 24 * time.Hour,
		EmergencyDelay:  24 * time.Hour,
		ActionInterval:  time.Minute,
	}
}
