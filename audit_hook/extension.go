// Package audithook bridges Ledger lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xraph/memberledger/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                       = (*Extension)(nil)
	_ plugin.OnPlanCreated                = (*Extension)(nil)
	_ plugin.OnPlanStatusChanged          = (*Extension)(nil)
	_ plugin.OnMemberRegistered           = (*Extension)(nil)
	_ plugin.OnMemberUpgraded             = (*Extension)(nil)
	_ plugin.OnMemberExited               = (*Extension)(nil)
	_ plugin.OnCycleRollover              = (*Extension)(nil)
	_ plugin.OnUplineLagging              = (*Extension)(nil)
	_ plugin.OnCommissionPaid             = (*Extension)(nil)
	_ plugin.OnCommissionRedirected       = (*Extension)(nil)
	_ plugin.OnWithdrawal                 = (*Extension)(nil)
	_ plugin.OnBatchWithdrawal            = (*Extension)(nil)
	_ plugin.OnEmergencyWithdrawRequested = (*Extension)(nil)
	_ plugin.OnEmergencyWithdrawn         = (*Extension)(nil)
	_ plugin.OnPauseChanged               = (*Extension)(nil)
	_ plugin.OnGuardTripped               = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Ledger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Plan lifecycle hooks
// ──────────────────────────────────────────────────

// OnPlanCreated implements plugin.OnPlanCreated.
func (e *Extension) OnPlanCreated(ctx context.Context, _ interface{}) error {
	// Would extract plan details from the interface
	return e.record(ctx, ActionPlanCreated, SeverityInfo, OutcomeSuccess,
		ResourcePlan, "", CategoryMembership, nil,
		"event", "plan_created",
	)
}

// OnPlanStatusChanged implements plugin.OnPlanStatusChanged.
func (e *Extension) OnPlanStatusChanged(ctx context.Context, planID int, active bool) error {
	return e.record(ctx, ActionPlanStatusChanged, SeverityInfo, OutcomeSuccess,
		ResourcePlan, strconv.Itoa(planID), CategoryMembership, nil,
		"plan_id", planID,
		"active", active,
	)
}

// ──────────────────────────────────────────────────
// Membership lifecycle hooks
// ──────────────────────────────────────────────────

// OnMemberRegistered implements plugin.OnMemberRegistered.
func (e *Extension) OnMemberRegistered(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionMemberRegistered, SeverityInfo, OutcomeSuccess,
		ResourceMember, "", CategoryMembership, nil,
		"event", "member_registered",
	)
}

// OnMemberUpgraded implements plugin.OnMemberUpgraded.
func (e *Extension) OnMemberUpgraded(ctx context.Context, _ interface{}, fromPlan, toPlan int) error {
	return e.record(ctx, ActionMemberUpgraded, SeverityInfo, OutcomeSuccess,
		ResourceMember, "", CategoryMembership, nil,
		"from_plan", fromPlan,
		"to_plan", toPlan,
	)
}

// OnMemberExited implements plugin.OnMemberExited.
func (e *Extension) OnMemberExited(ctx context.Context, addr string, refund int64) error {
	return e.record(ctx, ActionMemberExited, SeverityInfo, OutcomeSuccess,
		ResourceMember, addr, CategoryMembership, nil,
		"address", addr,
		"refund", refund,
	)
}

// OnCycleRollover implements plugin.OnCycleRollover.
func (e *Extension) OnCycleRollover(ctx context.Context, planID, newCycle int) error {
	return e.record(ctx, ActionCycleRollover, SeverityInfo, OutcomeSuccess,
		ResourceCycle, strconv.Itoa(planID), CategoryMembership, nil,
		"plan_id", planID,
		"new_cycle", newCycle,
	)
}

// OnUplineLagging implements plugin.OnUplineLagging.
func (e *Extension) OnUplineLagging(ctx context.Context, upline, member string, uplineTier, memberTier int) error {
	return e.record(ctx, ActionUplineLagging, SeverityWarning, OutcomeSuccess,
		ResourceMember, upline, CategoryMembership, nil,
		"upline", upline,
		"member", member,
		"upline_tier", uplineTier,
		"member_tier", memberTier,
	)
}

// ──────────────────────────────────────────────────
// Distribution hooks
// ──────────────────────────────────────────────────

// OnCommissionPaid implements plugin.OnCommissionPaid.
func (e *Extension) OnCommissionPaid(ctx context.Context, upline, payer string, amount int64) error {
	return e.record(ctx, ActionCommissionPaid, SeverityInfo, OutcomeSuccess,
		ResourceMember, upline, CategoryDistribution, nil,
		"upline", upline,
		"payer", payer,
		"amount", amount,
	)
}

// OnCommissionRedirected implements plugin.OnCommissionRedirected.
func (e *Extension) OnCommissionRedirected(ctx context.Context, upline, payer string, amount int64) error {
	return e.record(ctx, ActionCommissionRedirected, SeverityWarning, OutcomePartial,
		ResourceMember, upline, CategoryDistribution, nil,
		"upline", upline,
		"payer", payer,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Treasury hooks
// ──────────────────────────────────────────────────

// OnWithdrawal implements plugin.OnWithdrawal.
func (e *Extension) OnWithdrawal(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionWithdrawal, SeverityWarning, OutcomeSuccess,
		ResourceTreasury, "", CategoryTreasury, nil,
		"event", "withdrawal",
	)
}

// OnBatchWithdrawal implements plugin.OnBatchWithdrawal.
func (e *Extension) OnBatchWithdrawal(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBatchWithdrawal, SeverityWarning, OutcomeSuccess,
		ResourceTreasury, "", CategoryTreasury, nil,
		"event", "batch_withdrawal",
	)
}

// OnEmergencyWithdrawRequested implements plugin.OnEmergencyWithdrawRequested.
func (e *Extension) OnEmergencyWithdrawRequested(ctx context.Context, requestedAt interface{}) error {
	return e.record(ctx, ActionEmergencyRequested, SeverityCritical, OutcomeSuccess,
		ResourceTreasury, "", CategoryTreasury, nil,
		"requested_at", requestedAt,
	)
}

// OnEmergencyWithdrawn implements plugin.OnEmergencyWithdrawn.
func (e *Extension) OnEmergencyWithdrawn(ctx context.Context, amount int64) error {
	return e.record(ctx, ActionEmergencyWithdrawn, SeverityCritical, OutcomeSuccess,
		ResourceTreasury, "", CategoryTreasury, nil,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Safety hooks
// ──────────────────────────────────────────────────

// OnPauseChanged implements plugin.OnPauseChanged.
func (e *Extension) OnPauseChanged(ctx context.Context, paused bool) error {
	severity := SeverityInfo
	if paused {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionPauseChanged, severity, OutcomeSuccess,
		ResourceTreasury, "", CategorySafety, nil,
		"paused", paused,
	)
}

// OnGuardTripped implements plugin.OnGuardTripped.
func (e *Extension) OnGuardTripped(ctx context.Context, addr, guard string) error {
	return e.record(ctx, ActionGuardTripped, SeverityWarning, OutcomeFailure,
		ResourceGuard, addr, CategorySafety, nil,
		"address", addr,
		"guard", guard,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
