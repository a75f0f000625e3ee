package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                       []OnInit
	onShutdown                   []OnShutdown
	onPlanCreated                []OnPlanCreated
	onPlanStatusChanged          []OnPlanStatusChanged
	onMemberRegistered           []OnMemberRegistered
	onMemberUpgraded             []OnMemberUpgraded
	onMemberExited               []OnMemberExited
	onCycleRollover              []OnCycleRollover
	onUplineLagging              []OnUplineLagging
	onCommissionPaid             []OnCommissionPaid
	onCommissionRedirected       []OnCommissionRedirected
	onWithdrawal                 []OnWithdrawal
	onBatchWithdrawal            []OnBatchWithdrawal
	onEmergencyWithdrawRequested []OnEmergencyWithdrawRequested
	onEmergencyWithdrawn         []OnEmergencyWithdrawn
	onPauseChanged               []OnPauseChanged
	onGuardTripped               []OnGuardTripped
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnPlanCreated); ok {
		r.onPlanCreated = append(r.onPlanCreated, v)
	}
	if v, ok := p.(OnPlanStatusChanged); ok {
		r.onPlanStatusChanged = append(r.onPlanStatusChanged, v)
	}
	if v, ok := p.(OnMemberRegistered); ok {
		r.onMemberRegistered = append(r.onMemberRegistered, v)
	}
	if v, ok := p.(OnMemberUpgraded); ok {
		r.onMemberUpgraded = append(r.onMemberUpgraded, v)
	}
	if v, ok := p.(OnMemberExited); ok {
		r.onMemberExited = append(r.onMemberExited, v)
	}
	if v, ok := p.(OnCycleRollover); ok {
		r.onCycleRollover = append(r.onCycleRollover, v)
	}
	if v, ok := p.(OnUplineLagging); ok {
		r.onUplineLagging = append(r.onUplineLagging, v)
	}
	if v, ok := p.(OnCommissionPaid); ok {
		r.onCommissionPaid = append(r.onCommissionPaid, v)
	}
	if v, ok := p.(OnCommissionRedirected); ok {
		r.onCommissionRedirected = append(r.onCommissionRedirected, v)
	}
	if v, ok := p.(OnWithdrawal); ok {
		r.onWithdrawal = append(r.onWithdrawal, v)
	}
	if v, ok := p.(OnBatchWithdrawal); ok {
		r.onBatchWithdrawal = append(r.onBatchWithdrawal, v)
	}
	if v, ok := p.(OnEmergencyWithdrawRequested); ok {
		r.onEmergencyWithdrawRequested = append(r.onEmergencyWithdrawRequested, v)
	}
	if v, ok := p.(OnEmergencyWithdrawn); ok {
		r.onEmergencyWithdrawn = append(r.onEmergencyWithdrawn, v)
	}
	if v, ok := p.(OnPauseChanged); ok {
		r.onPauseChanged = append(r.onPauseChanged, v)
	}
	if v, ok := p.(OnGuardTripped); ok {
		r.onGuardTripped = append(r.onGuardTripped, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnPlanCreated)(nil)).Elem(), "OnPlanCreated")
	checkInterface(reflect.TypeOf((*OnMemberRegistered)(nil)).Elem(), "OnMemberRegistered")
	checkInterface(reflect.TypeOf((*OnMemberUpgraded)(nil)).Elem(), "OnMemberUpgraded")
	checkInterface(reflect.TypeOf((*OnMemberExited)(nil)).Elem(), "OnMemberExited")
	checkInterface(reflect.TypeOf((*OnCycleRollover)(nil)).Elem(), "OnCycleRollover")
	checkInterface(reflect.TypeOf((*OnCommissionPaid)(nil)).Elem(), "OnCommissionPaid")
	checkInterface(reflect.TypeOf((*OnWithdrawal)(nil)).Elem(), "OnWithdrawal")
	checkInterface(reflect.TypeOf((*OnGuardTripped)(nil)).Elem(), "OnGuardTripped")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPlanCreated emits a plan created event.
func (r *Registry) EmitPlanCreated(ctx context.Context, plan interface{}) {
	r.mu.RLock()
	plugins := r.onPlanCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlanCreated(ctx, plan)
		}); err != nil {
			r.logger.Warn("plugin OnPlanCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPlanStatusChanged emits a plan status change event.
func (r *Registry) EmitPlanStatusChanged(ctx context.Context, planID int, active bool) {
	r.mu.RLock()
	plugins := r.onPlanStatusChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlanStatusChanged(ctx, planID, active)
		}); err != nil {
			r.logger.Warn("plugin OnPlanStatusChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMemberRegistered emits a member registered event.
func (r *Registry) EmitMemberRegistered(ctx context.Context, member interface{}) {
	r.mu.RLock()
	plugins := r.onMemberRegistered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMemberRegistered(ctx, member)
		}); err != nil {
			r.logger.Warn("plugin OnMemberRegistered failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMemberUpgraded emits a member upgraded event.
func (r *Registry) EmitMemberUpgraded(ctx context.Context, member interface{}, fromPlan, toPlan int) {
	r.mu.RLock()
	plugins := r.onMemberUpgraded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMemberUpgraded(ctx, member, fromPlan, toPlan)
		}); err != nil {
			r.logger.Warn("plugin OnMemberUpgraded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMemberExited emits a member exited event.
func (r *Registry) EmitMemberExited(ctx context.Context, addr string, refund int64) {
	r.mu.RLock()
	plugins := r.onMemberExited
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMemberExited(ctx, addr, refund)
		}); err != nil {
			r.logger.Warn("plugin OnMemberExited failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCycleRollover emits a cycle rollover event.
func (r *Registry) EmitCycleRollover(ctx context.Context, planID, newCycle int) {
	r.mu.RLock()
	plugins := r.onCycleRollover
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCycleRollover(ctx, planID, newCycle)
		}); err != nil {
			r.logger.Warn("plugin OnCycleRollover failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUplineLagging emits an upline lagging event.
func (r *Registry) EmitUplineLagging(ctx context.Context, upline, member string, uplineTier, memberTier int) {
	r.mu.RLock()
	plugins := r.onUplineLagging
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUplineLagging(ctx, upline, member, uplineTier, memberTier)
		}); err != nil {
			r.logger.Warn("plugin OnUplineLagging failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCommissionPaid emits a commission paid event.
func (r *Registry) EmitCommissionPaid(ctx context.Context, upline, payer string, amount int64) {
	r.mu.RLock()
	plugins := r.onCommissionPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCommissionPaid(ctx, upline, payer, amount)
		}); err != nil {
			r.logger.Warn("plugin OnCommissionPaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCommissionRedirected emits a commission redirected event.
func (r *Registry) EmitCommissionRedirected(ctx context.Context, upline, payer string, amount int64) {
	r.mu.RLock()
	plugins := r.onCommissionRedirected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCommissionRedirected(ctx, upline, payer, amount)
		}); err != nil {
			r.logger.Warn("plugin OnCommissionRedirected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWithdrawal emits a withdrawal event.
func (r *Registry) EmitWithdrawal(ctx context.Context, withdrawal interface{}) {
	r.mu.RLock()
	plugins := r.onWithdrawal
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWithdrawal(ctx, withdrawal)
		}); err != nil {
			r.logger.Warn("plugin OnWithdrawal failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBatchWithdrawal emits a batch withdrawal event.
func (r *Registry) EmitBatchWithdrawal(ctx context.Context, summary interface{}) {
	r.mu.RLock()
	plugins := r.onBatchWithdrawal
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBatchWithdrawal(ctx, summary)
		}); err != nil {
			r.logger.Warn("plugin OnBatchWithdrawal failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEmergencyWithdrawRequested emits an emergency withdraw requested event.
func (r *Registry) EmitEmergencyWithdrawRequested(ctx context.Context, requestedAt interface{}) {
	r.mu.RLock()
	plugins := r.onEmergencyWithdrawRequested
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEmergencyWithdrawRequested(ctx, requestedAt)
		}); err != nil {
			r.logger.Warn("plugin OnEmergencyWithdrawRequested failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEmergencyWithdrawn emits an emergency withdrawn event.
func (r *Registry) EmitEmergencyWithdrawn(ctx context.Context, amount int64) {
	r.mu.RLock()
	plugins := r.onEmergencyWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEmergencyWithdrawn(ctx, amount)
		}); err != nil {
			r.logger.Warn("plugin OnEmergencyWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPauseChanged emits a pause state change event.
func (r *Registry) EmitPauseChanged(ctx context.Context, paused bool) {
	r.mu.RLock()
	plugins := r.onPauseChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPauseChanged(ctx, paused)
		}); err != nil {
			r.logger.Warn("plugin OnPauseChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitGuardTripped emits a guard tripped event.
func (r *Registry) EmitGuardTripped(ctx context.Context, addr, guard string) {
	r.mu.RLock()
	plugins := r.onGuardTripped
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnGuardTripped(ctx, addr, guard)
		}); err != nil {
			r.logger.Warn("plugin OnGuardTripped failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
