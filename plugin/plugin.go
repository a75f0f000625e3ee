// Package plugin provides an extensible plugin system for the
// membership ledger. Plugins can hook into lifecycle events to extend
// functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Plan lifecycle hooks
// ──────────────────────────────────────────────────

// OnPlanCreated is called when a new plan is created.
type OnPlanCreated interface {
	Plugin
	OnPlanCreated(ctx context.Context, plan interface{}) error
}

// OnPlanStatusChanged is called when a plan is activated or deactivated.
type OnPlanStatusChanged interface {
	Plugin
	OnPlanStatusChanged(ctx context.Context, planID int, active bool) error
}

// ──────────────────────────────────────────────────
// Membership lifecycle hooks
// ──────────────────────────────────────────────────

// OnMemberRegistered is called when a new member registers.
type OnMemberRegistered interface {
	Plugin
	OnMemberRegistered(ctx context.Context, member interface{}) error
}

// OnMemberUpgraded is called when a member upgrades to the next plan.
type OnMemberUpgraded interface {
	Plugin
	OnMemberUpgraded(ctx context.Context, member interface{}, fromPlan, toPlan int) error
}

// OnMemberExited is called when a member exits and is refunded.
type OnMemberExited interface {
	Plugin
	OnMemberExited(ctx context.Context, addr string, refund int64) error
}

// OnCycleRollover is called when a plan's cycle fills and rolls over.
type OnCycleRollover interface {
	Plugin
	OnCycleRollover(ctx context.Context, planID, newCycle int) error
}

// OnUplineLagging is called when an upgrading member's upline now sits
// below the member's new tier. Informational only.
type OnUplineLagging interface {
	Plugin
	OnUplineLagging(ctx context.Context, upline, member string, uplineTier, memberTier int) error
}

// ──────────────────────────────────────────────────
// Distribution hooks
// ──────────────────────────────────────────────────

// OnCommissionPaid is called when an upline commission is paid out.
type OnCommissionPaid interface {
	Plugin
	OnCommissionPaid(ctx context.Context, upline, payer string, amount int64) error
}

// OnCommissionRedirected is called when an upline share is redirected
// to the owner balance because the upline did not qualify.
type OnCommissionRedirected interface {
	Plugin
	OnCommissionRedirected(ctx context.Context, upline, payer string, amount int64) error
}

// ──────────────────────────────────────────────────
// Treasury hooks
// ──────────────────────────────────────────────────

// OnWithdrawal is called when a treasury withdrawal completes.
type OnWithdrawal interface {
	Plugin
	OnWithdrawal(ctx context.Context, withdrawal interface{}) error
}

// OnBatchWithdrawal is called when a batch withdrawal completes.
type OnBatchWithdrawal interface {
	Plugin
	OnBatchWithdrawal(ctx context.Context, summary interface{}) error
}

// OnEmergencyWithdrawRequested is called when the owner opens the
// emergency timelock.
type OnEmergencyWithdrawRequested interface {
	Plugin
	OnEmergencyWithdrawRequested(ctx context.Context, requestedAt interface{}) error
}

// OnEmergencyWithdrawn is called after the matured emergency sweep.
type OnEmergencyWithdrawn interface {
	Plugin
	OnEmergencyWithdrawn(ctx context.Context, amount int64) error
}

// ──────────────────────────────────────────────────
// Safety hooks
// ──────────────────────────────────────────────────

// OnPauseChanged is called when the ledger is paused or resumed.
type OnPauseChanged interface {
	Plugin
	OnPauseChanged(ctx context.Context, paused bool) error
}

// OnGuardTripped is called when a safety guard rejects an operation:
// reentrancy, action interval, referral depth or loop.
type OnGuardTripped interface {
	Plugin
	OnGuardTripped(ctx context.Context, addr, guard string) error
}
