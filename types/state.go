package types

import "time"

// BootstrapState tracks the one-time first-registrant latch. The very
// first registration forces the contract owner as upline and flips the
// ledger from AwaitingBootstrap to Active; the latch never resets, even
// if every member later exits.
type BootstrapState string

// Bootstrap states.
const (
	AwaitingBootstrap BootstrapState = "awaiting_bootstrap"
	Active            BootstrapState = "active"
)

// LedgerState is the singleton global state row for one ledger
// instance: pause flag, bootstrap latch, emergency-withdraw timelock,
// and the stored-but-computationally-unused price feed address.
type LedgerState struct {
	Paused                  bool           `json:"paused"`
	Bootstrap               BootstrapState `json:"bootstrap"`
	EmergencyRequestedAt    time.Time      `json:"emergency_requested_at"` // zero when no request pending
	PriceFeed               Address        `json:"price_feed"`
	BaseURI                 string         `json:"base_uri"`
}

// EmergencyPending reports whether an emergency withdrawal request is open.
func (s *LedgerState) EmergencyPending() bool {
	return !s.EmergencyRequestedAt.IsZero()
}
