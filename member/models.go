// Package member defines the per-address membership record.
package member

import (
	"time"

	"github.com/xraph/memberledger/types"
)

// Member is the directory record for one holder address. It exists for
// exactly as long as the address holds a live membership token: created
// at registration, mutated on upgrade and on referral income, deleted
// on exit.
type Member struct {
	types.Entity
	Address        types.Address `json:"address"`
	Upline         types.Address `json:"upline"` // zero address means "owner-sponsored"
	TotalReferrals int64         `json:"total_referrals"`
	TotalEarnings  types.Amount  `json:"total_earnings"`
	PlanID         int           `json:"plan_id"` // current tier, >= 1
	CycleNumber    int           `json:"cycle_number"`
	RegisteredAt   time.Time     `json:"registered_at"`
	LastUpgradeAt  time.Time     `json:"last_upgrade_at"`
}

// CanExitAfter returns the earliest time the member may exit.
func (m *Member) CanExitAfter(lockPeriod time.Duration) time.Time {
	return m.RegisteredAt.Add(lockPeriod)
}

// UpgradeCooldownOver reports whether the upgrade cooldown has elapsed.
// The cooldown runs from the later of registration and last upgrade.
func (m *Member) UpgradeCooldownOver(cooldown time.Duration, now time.Time) bool {
	last := m.RegisteredAt
	if m.LastUpgradeAt.After(last) {
		last = m.LastUpgradeAt
	}
	return now.Sub(last) >= cooldown
}
