// Package extension provides the Forge extension adapter for Memberledger.
//
// It implements the forge.Extension interface to integrate Memberledger
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.memberledger" or
// "memberledger" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	memberledger "github.com/xraph/memberledger"
	"github.com/xraph/memberledger/paytoken"
	"github.com/xraph/memberledger/store"
	"github.com/xraph/memberledger/store/memory"
	"github.com/xraph/memberledger/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "memberledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Composable membership and referral ledger engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Memberledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *memberledger.Ledger
	store      store.Store
	pay        paytoken.Token
	ledgerOpts []memberledger.Option
}

// New creates a new Memberledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *memberledger.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.pay == nil {
		return errors.New("memberledger: payment token is required; use WithPaymentToken")
	}

	owner := types.Address(e.config.Owner).Normalize()
	custody := types.Address(e.config.Custody).Normalize()
	if owner == types.ZeroAddress || custody == types.ZeroAddress {
		return errors.New("memberledger: owner and custody addresses are required")
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build ledger options from resolved config.
	opts := e.buildLedgerOpts()

	eng := memberledger.New(e.store, e.pay, owner, custody, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*memberledger.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("memberledger: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	if e.config.AutoInitialize {
		if err := e.engine.Initialize(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("memberledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildLedgerOpts constructs memberledger.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []memberledger.Option {
	opts := make([]memberledger.Option, 0, len(e.ledgerOpts)+5)

	// Apply config-derived options.
	if e.config.UpgradeCooldown > 0 {
		opts = append(opts, memberledger.WithUpgradeCooldown(e.config.UpgradeCooldown))
	}
	if e.config.ExitLock > 0 {
		opts = append(opts, memberledger.WithExitLock(e.config.ExitLock))
	}
	if e.config.EmergencyDelay > 0 {
		opts = append(opts, memberledger.WithEmergencyDelay(e.config.EmergencyDelay))
	}
	if e.config.ActionInterval > 0 {
		opts = append(opts, memberledger.WithActionInterval(e.config.ActionInterval))
	}
	if e.config.PlanImageBase != "" {
		opts = append(opts, memberledger.WithPlanImageBase(e.config.PlanImageBase))
	}

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("memberledger: configuration is required but not found in config files; " +
				"ensure 'extensions.memberledger' or 'memberledger' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("memberledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("auto_initialize", e.config.AutoInitialize),
		forge.F("upgrade_cooldown", e.config.UpgradeCooldown),
		forge.F("exit_lock", e.config.ExitLock),
		forge.F("emergency_delay", e.config.EmergencyDelay),
		forge.F("action_interval", e.config.ActionInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.memberledger" first (namespaced pattern).
	if cm.IsSet("extensions.memberledger") {
		if err := cm.Bind("extensions.memberledger", &cfg); err == nil {
			e.Logger().Debug("memberledger: loaded config from file",
				forge.F("key", "extensions.memberledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("memberledger: failed to bind extensions.memberledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "memberledger" key.
	if cm.IsSet("memberledger") {
		if err := cm.Bind("memberledger", &cfg); err == nil {
			e.Logger().Debug("memberledger: loaded config from file",
				forge.F("key", "memberledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("memberledger: failed to bind memberledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.UpgradeCooldown == 0 {
		cfg.UpgradeCooldown = defaults.UpgradeCooldown
	}
	if cfg.ExitLock == 0 {
		cfg.ExitLock = defaults.ExitLock
	}
	if cfg.EmergencyDelay == 0 {
		cfg.EmergencyDelay = defaults.EmergencyDelay
	}
	if cfg.ActionInterval == 0 {
		cfg.ActionInterval = defaults.ActionInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.AutoInitialize {
		yamlConfig.AutoInitialize = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Owner == "" && programmaticConfig.Owner != "" {
		yamlConfig.Owner = programmaticConfig.Owner
	}
	if yamlConfig.Custody == "" && programmaticConfig.Custody != "" {
		yamlConfig.Custody = programmaticConfig.Custody
	}
	if yamlConfig.PlanImageBase == "" && programmaticConfig.PlanImageBase != "" {
		yamlConfig.PlanImageBase = programmaticConfig.PlanImageBase
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.UpgradeCooldown == 0 && programmaticConfig.UpgradeCooldown != 0 {
		yamlConfig.UpgradeCooldown = programmaticConfig.UpgradeCooldown
	}
	if yamlConfig.ExitLock == 0 && programmaticConfig.ExitLock != 0 {
		yamlConfig.ExitLock = programmaticConfig.ExitLock
	}
	if yamlConfig.EmergencyDelay == 0 && programmaticConfig.EmergencyDelay != 0 {
		yamlConfig.EmergencyDelay = programmaticConfig.EmergencyDelay
	}
	if yamlConfig.ActionInterval == 0 && programmaticConfig.ActionInterval != 0 {
		yamlConfig.ActionInterval = programmaticConfig.ActionInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
