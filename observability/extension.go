// Package observability provides a metrics extension for the membership
// ledger that records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/memberledger/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnPlanCreated          = (*MetricsExtension)(nil)
	_ plugin.OnPlanStatusChanged    = (*MetricsExtension)(nil)
	_ plugin.OnMemberRegistered     = (*MetricsExtension)(nil)
	_ plugin.OnMemberUpgraded       = (*MetricsExtension)(nil)
	_ plugin.OnMemberExited         = (*MetricsExtension)(nil)
	_ plugin.OnCycleRollover        = (*MetricsExtension)(nil)
	_ plugin.OnCommissionPaid       = (*MetricsExtension)(nil)
	_ plugin.OnCommissionRedirected = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawal           = (*MetricsExtension)(nil)
	_ plugin.OnBatchWithdrawal      = (*MetricsExtension)(nil)
	_ plugin.OnEmergencyWithdrawn   = (*MetricsExtension)(nil)
	_ plugin.OnPauseChanged         = (*MetricsExtension)(nil)
	_ plugin.OnGuardTripped         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a ledger plugin to automatically track membership metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Plan metrics
	PlanCreated       Counter
	PlanStatusChanged Counter

	// Membership metrics
	MemberRegistered Counter
	MemberUpgraded   Counter
	MemberExited     Counter
	CycleRollovers   Counter
	ExitRefundAmount Histogram

	// Distribution metrics
	CommissionPaid       Counter
	CommissionRedirected Counter
	CommissionAmount     Histogram

	// Treasury metrics
	Withdrawals        Counter
	BatchWithdrawals   Counter
	EmergencyWithdrawn Counter

	// Safety metrics
	PauseChanges  Counter
	GuardsTripped Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Plan metrics
		PlanCreated:       factory.Counter("memberledger.plan.created"),
		PlanStatusChanged: factory.Counter("memberledger.plan.status_changed"),

		// Membership metrics
		MemberRegistered: factory.Counter("memberledger.member.registered"),
		MemberUpgraded:   factory.Counter("memberledger.member.upgraded"),
		MemberExited:     factory.Counter("memberledger.member.exited"),
		CycleRollovers:   factory.Counter("memberledger.cycle.rollovers"),
		ExitRefundAmount: factory.Histogram("memberledger.exit.refund_amount"),

		// Distribution metrics
		CommissionPaid:       factory.Counter("memberledger.commission.paid"),
		CommissionRedirected: factory.Counter("memberledger.commission.redirected"),
		CommissionAmount:     factory.Histogram("memberledger.commission.amount"),

		// Treasury metrics
		Withdrawals:        factory.Counter("memberledger.treasury.withdrawals"),
		BatchWithdrawals:   factory.Counter("memberledger.treasury.batch_withdrawals"),
		EmergencyWithdrawn: factory.Counter("memberledger.treasury.emergency_withdrawn"),

		// Safety metrics
		PauseChanges:  factory.Counter("memberledger.pause.changes"),
		GuardsTripped: factory.Counter("memberledger.guards.tripped"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Plan lifecycle hooks
// ──────────────────────────────────────────────────

// OnPlanCreated implements plugin.OnPlanCreated.
func (m *MetricsExtension) OnPlanCreated(_ context.Context, _ interface{}) error {
	m.PlanCreated.Inc()
	return nil
}

// OnPlanStatusChanged implements plugin.OnPlanStatusChanged.
func (m *MetricsExtension) OnPlanStatusChanged(_ context.Context, _ int, _ bool) error {
	m.PlanStatusChanged.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Membership lifecycle hooks
// ──────────────────────────────────────────────────

// OnMemberRegistered implements plugin.OnMemberRegistered.
func (m *MetricsExtension) OnMemberRegistered(_ context.Context, _ interface{}) error {
	m.MemberRegistered.Inc()
	return nil
}

// OnMemberUpgraded implements plugin.OnMemberUpgraded.
func (m *MetricsExtension) OnMemberUpgraded(_ context.Context, _ interface{}, _, _ int) error {
	m.MemberUpgraded.Inc()
	return nil
}

// OnMemberExited implements plugin.OnMemberExited.
func (m *MetricsExtension) OnMemberExited(_ context.Context, _ string, refund int64) error {
	m.MemberExited.Inc()
	m.ExitRefundAmount.Observe(float64(refund))
	return nil
}

// OnCycleRollover implements plugin.OnCycleRollover.
func (m *MetricsExtension) OnCycleRollover(_ context.Context, _, _ int) error {
	m.CycleRollovers.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Distribution hooks
// ──────────────────────────────────────────────────

// OnCommissionPaid implements plugin.OnCommissionPaid.
func (m *MetricsExtension) OnCommissionPaid(_ context.Context, _, _ string, amount int64) error {
	m.CommissionPaid.Inc()
	m.CommissionAmount.Observe(float64(amount))
	return nil
}

// OnCommissionRedirected implements plugin.OnCommissionRedirected.
func (m *MetricsExtension) OnCommissionRedirected(_ context.Context, _, _ string, _ int64) error {
	m.CommissionRedirected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Treasury hooks
// ──────────────────────────────────────────────────

// OnWithdrawal implements plugin.OnWithdrawal.
func (m *MetricsExtension) OnWithdrawal(_ context.Context, _ interface{}) error {
	m.Withdrawals.Inc()
	return nil
}

// OnBatchWithdrawal implements plugin.OnBatchWithdrawal.
func (m *MetricsExtension) OnBatchWithdrawal(_ context.Context, _ interface{}) error {
	m.BatchWithdrawals.Inc()
	return nil
}

// OnEmergencyWithdrawn implements plugin.OnEmergencyWithdrawn.
func (m *MetricsExtension) OnEmergencyWithdrawn(_ context.Context, _ int64) error {
	m.EmergencyWithdrawn.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Safety hooks
// ──────────────────────────────────────────────────

// OnPauseChanged implements plugin.OnPauseChanged.
func (m *MetricsExtension) OnPauseChanged(_ context.Context, _ bool) error {
	m.PauseChanges.Inc()
	return nil
}

// OnGuardTripped implements plugin.OnGuardTripped.
func (m *MetricsExtension) OnGuardTripped(_ context.Context, _, _ string) error {
	m.GuardsTripped.Inc()
	return nil
}
