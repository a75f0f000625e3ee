package audithook

// Action constants for audit events.
const (
	// Plan actions
	ActionPlanCreated       = "plan.created"
	ActionPlanStatusChanged = "plan.status_changed"

	// Membership actions
	ActionMemberRegistered = "member.registered"
	ActionMemberUpgraded   = "member.upgraded"
	ActionMemberExited     = "member.exited"
	ActionCycleRollover    = "cycle.rollover"
	ActionUplineLagging    = "upline.lagging"

	// Distribution actions
	ActionCommissionPaid       = "commission.paid"
	ActionCommissionRedirected = "commission.redirected"

	// Treasury actions
	ActionWithdrawal         = "treasury.withdrawal"
	ActionBatchWithdrawal    = "treasury.batch_withdrawal"
	ActionEmergencyRequested = "treasury.emergency_requested"
	ActionEmergencyWithdrawn = "treasury.emergency_withdrawn"

	// Safety actions
	ActionPauseChanged = "pause.changed"
	ActionGuardTripped = "guard.tripped"
)

// Resource constants for audit events.
const (
	ResourcePlan     = "plan"
	ResourceMember   = "member"
	ResourceCycle    = "cycle"
	ResourceTreasury = "treasury"
	ResourceGuard    = "guard"
)

// Category constants for audit events.
const (
	CategoryMembership   = "membership"
	CategoryDistribution = "distribution"
	CategoryTreasury     = "treasury"
	CategorySafety       = "safety"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
