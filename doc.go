// Package memberledger provides a composable membership and referral
// ledger engine for Go applications.
//
// Memberledger is designed as a library, not a service. Import it
// directly into your Go application. It provides:
//
//   - A sixteen-tier plan registry with fixed four-member cycles
//   - Referral placement with loop and depth guards
//   - Deterministic payment splits between upline, treasury and fund
//   - Non-transferable membership ownership tokens
//   - Owner treasury withdrawals with a 24h emergency timelock
//   - Reentrancy and front-running protection on every entry point
//
// # Quick Start
//
// Create a ledger instance with your preferred store and payment token:
//
//	import (
//	    "github.com/xraph/memberledger"
//	    "github.com/xraph/memberledger/store/memory"
//	)
//
//	l := memberledger.New(memory.New(), payToken, owner, custody)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
//	// Create the sixteen-tier catalog
//	if err := l.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Core Concepts
//
// Members register into tier 1, paying the tier price through the
// external payment token. The payment is split by tier band between the
// referring upline, the owner treasury, a fee pool, and a community
// fund:
//
//	m, err := l.Register(ctx, caller, 1, upline)
//
// Upgrades move a member exactly one tier at a time, paying the price
// difference:
//
//	m, err := l.Upgrade(ctx, caller, 2)
//
// Exit burns the membership token after the lock period and refunds 30%
// of the current tier price from the community fund:
//
//	refund, err := l.Exit(ctx, caller)
//
// All monetary calculations use checked integer arithmetic in the
// payment token's smallest unit; overflow fails the operation instead
// of wrapping.
//
// # TypeID
//
// Ledger-created records use TypeID for globally unique, type-safe
// identifiers:
//
//	mtok_01h2xcejqtf2nbrexx3vqjhp41  // Membership token ID
//	txn_01h2xcejqtf2nbrexx3vqjhp41   // Transaction record ID
//	wdr_01h455vb4pex5vsknk084sn02q   // Withdrawal receipt ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package memberledger
