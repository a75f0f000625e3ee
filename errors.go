package memberledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios. Every failure rejects
// the whole operation synchronously; the ledger never retries and never
// commits partial state.
var (
	// General errors
	ErrNotFound      = errors.New("memberledger: not found")
	ErrAlreadyExists = errors.New("memberledger: already exists")
	ErrInvalidInput  = errors.New("memberledger: invalid input")

	// Validation errors
	ErrInvalidPlanID    = errors.New("memberledger: plan id out of range")
	ErrPlanInactive     = errors.New("memberledger: plan is not active")
	ErrPlanNoImage      = errors.New("memberledger: plan default image not set")
	ErrInvalidAddress   = errors.New("memberledger: invalid address")
	ErrEmptyName        = errors.New("memberledger: name must not be empty")
	ErrEmptyURI         = errors.New("memberledger: uri must not be empty")
	ErrInvalidAmount    = errors.New("memberledger: amount must be positive")
	ErrInvalidCycleSize = errors.New("memberledger: members per cycle is fixed")
	ErrMustStartAtTier1 = errors.New("memberledger: must start at tier 1")
	ErrInvalidUpline    = errors.New("memberledger: upline is not a qualifying member")

	// Authorization errors
	ErrNotOwner  = errors.New("memberledger: caller is not the owner")
	ErrNotMember = errors.New("memberledger: caller is not a member")

	// State-conflict errors
	ErrAlreadyMember        = errors.New("memberledger: address already holds a membership token")
	ErrUpgradeOutOfSequence = errors.New("memberledger: upgrade must target the next tier")
	ErrUpgradeCooldown      = errors.New("memberledger: upgrade cooldown not elapsed")
	ErrExitLocked           = errors.New("memberledger: exit lock period not elapsed")
	ErrPaused               = errors.New("memberledger: ledger is paused")
	ErrNotPaused            = errors.New("memberledger: ledger is not paused")

	// Funds errors
	ErrInsufficientBalance  = errors.New("memberledger: insufficient tracked balance")
	ErrFundCannotCover      = errors.New("memberledger: community fund cannot cover refund")
	ErrTransferFailed       = errors.New("memberledger: payment token transfer failed")
	ErrBalanceDeltaMismatch = errors.New("memberledger: custody balance delta mismatch")

	// Safety-guard errors
	ErrReentrantCall = errors.New("memberledger: reentrant call rejected")
	ErrReferralLoop  = errors.New("memberledger: referral loop detected")
	ErrReferralDepth = errors.New("memberledger: referral depth exceeded")
	ErrActionTooSoon = errors.New("memberledger: minimum action interval not elapsed")

	// Timelock errors
	ErrEmergencyNotRequested = errors.New("memberledger: emergency withdraw not requested")
	ErrEmergencyNotMatured   = errors.New("memberledger: emergency withdraw timelock not matured")
	ErrEmergencyPending      = errors.New("memberledger: emergency withdraw already requested")

	// Batch errors
	ErrBatchEmpty    = errors.New("memberledger: batch has no requests")
	ErrBatchTooLarge = errors.New("memberledger: batch exceeds request limit")

	// Store errors
	ErrStoreClosed       = errors.New("memberledger: store is closed")
	ErrTransactionFailed = errors.New("memberledger: transaction failed")
	ErrMigrationFailed   = errors.New("memberledger: migration failed")

	// Initialization errors
	ErrBadDecimals    = errors.New("memberledger: payment token decimals must be positive")
	ErrNotInitialized = errors.New("memberledger: ledger not initialized")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("memberledger: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsGuardError returns true if the error came from a safety guard:
// reentrancy rejection, referral loop/depth, or the action interval.
func IsGuardError(err error) bool {
	return errors.Is(err, ErrReentrantCall) ||
		errors.Is(err, ErrReferralLoop) ||
		errors.Is(err, ErrReferralDepth) ||
		errors.Is(err, ErrActionTooSoon)
}

// IsFundsError returns true if the error is related to moving or
// covering funds.
func IsFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrFundCannotCover) ||
		errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, ErrBalanceDeltaMismatch)
}

// IsTimelockError returns true if the error is a timelock rejection.
func IsTimelockError(err error) bool {
	return errors.Is(err, ErrEmergencyNotRequested) ||
		errors.Is(err, ErrEmergencyNotMatured) ||
		errors.Is(err, ErrUpgradeCooldown) ||
		errors.Is(err, ErrExitLocked)
}
