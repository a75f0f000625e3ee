// Package plan defines the membership tier catalog and per-tier cycle state.
package plan

import (
	"github.com/xraph/memberledger/types"
)

// MembersPerCycle is the fixed cycle capacity for every plan in this
// version. UpdateMembersPerCycle only accepts this value.
const MembersPerCycle = 4

// DefaultPlanCount is the number of tiers created at initialization.
const DefaultPlanCount = 16

// EntryPlanID is the only tier new members may register into.
const EntryPlanID = 1

// Plan is one membership tier. Plans are created once, never deleted,
// and mutable only via the Active flag and the default image URI.
type Plan struct {
	types.Entity
	ID              int          `json:"id"` // 1-based, sequential
	Name            string       `json:"name"`
	Price           types.Amount `json:"price"` // scaled to payment token decimals
	MembersPerCycle int          `json:"members_per_cycle"`
	Active          bool         `json:"active"`
	DefaultImageURI string       `json:"default_image_uri"`
}

// HasDefaultImage reports whether registration into this tier is
// unblocked. Tiers without a default image cannot mint tokens.
func (p *Plan) HasDefaultImage() bool {
	return p.DefaultImageURI != ""
}

// CycleInfo tracks cycle progression for one plan. CurrentCycle starts
// at 1; MembersInCurrentCycle resets to 0 on rollover. After any
// completed registration or upgrade, MembersInCurrentCycle is strictly
// less than the plan's MembersPerCycle.
type CycleInfo struct {
	PlanID                int `json:"plan_id"`
	CurrentCycle          int `json:"current_cycle"`
	MembersInCurrentCycle int `json:"members_in_current_cycle"`
}

// Advance records one member joining the plan's current cycle and
// reports whether the cycle rolled over. The increment and rollover are
// a single step so no intermediate over-capacity state is observable.
func (c *CycleInfo) Advance(capacity int) (rolledOver bool) {
	c.MembersInCurrentCycle++
	if c.MembersInCurrentCycle >= capacity {
		c.CurrentCycle++
		c.MembersInCurrentCycle = 0
		return true
	}
	return false
}
