package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/member"
	"github.com/xraph/memberledger/plan"
	"github.com/xraph/memberledger/token"
	"github.com/xraph/memberledger/treasury"
	"github.com/xraph/memberledger/txlog"
	"github.com/xraph/memberledger/types"
)

// ==================== Plan models ====================

type planModel struct {
	grove.BaseModel `grove:"table:memberledger_plans"`

	ID              int       `grove:"id,pk"`
	Name            string    `grove:"name"`
	Price           int64     `grove:"price"`
	MembersPerCycle int       `grove:"members_per_cycle"`
	Active          bool      `grove:"active"`
	DefaultImageURI string    `grove:"default_image_uri"`
	CreatedAt       time.Time `grove:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"`
}

func toPlanModel(p *plan.Plan) *planModel {
	return &planModel{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price.Int64(),
		MembersPerCycle: p.MembersPerCycle,
		Active:          p.Active,
		DefaultImageURI: p.DefaultImageURI,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func fromPlanModel(m *planModel) *plan.Plan {
	return &plan.Plan{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:              m.ID,
		Name:            m.Name,
		Price:           types.Amount(m.Price),
		MembersPerCycle: m.MembersPerCycle,
		Active:          m.Active,
		DefaultImageURI: m.DefaultImageURI,
	}
}

type cycleModel struct {
	grove.BaseModel `grove:"table:memberledger_cycles"`

	PlanID                int `grove:"plan_id,pk"`
	CurrentCycle          int `grove:"current_cycle"`
	MembersInCurrentCycle int `grove:"members_in_cycle"`
}

func toCycleModel(c *plan.CycleInfo) *cycleModel {
	return &cycleModel{
		PlanID:                c.PlanID,
		CurrentCycle:          c.CurrentCycle,
		MembersInCurrentCycle: c.MembersInCurrentCycle,
	}
}

func fromCycleModel(m *cycleModel) *plan.CycleInfo {
	return &plan.CycleInfo{
		PlanID:                m.PlanID,
		CurrentCycle:          m.CurrentCycle,
		MembersInCurrentCycle: m.MembersInCurrentCycle,
	}
}

// ==================== Member models ====================

type memberModel struct {
	grove.BaseModel `grove:"table:memberledger_members"`

	Address        string     `grove:"address,pk"`
	Upline         string     `grove:"upline"`
	TotalReferrals int64      `grove:"total_referrals"`
	TotalEarnings  int64      `grove:"total_earnings"`
	PlanID         int        `grove:"plan_id"`
	CycleNumber    int        `grove:"cycle_number"`
	RegisteredAt   time.Time  `grove:"registered_at"`
	LastUpgradeAt  *time.Time `grove:"last_upgrade_at"`
	CreatedAt      time.Time  `grove:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"`
}

func toMemberModel(m *member.Member) *memberModel {
	model := &memberModel{
		Address:        string(m.Address.Normalize()),
		Upline:         string(m.Upline.Normalize()),
		TotalReferrals: m.TotalReferrals,
		TotalEarnings:  m.TotalEarnings.Int64(),
		PlanID:         m.PlanID,
		CycleNumber:    m.CycleNumber,
		RegisteredAt:   m.RegisteredAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if !m.LastUpgradeAt.IsZero() {
		t := m.LastUpgradeAt
		model.LastUpgradeAt = &t
	}
	return model
}

func fromMemberModel(m *memberModel) *member.Member {
	result := &member.Member{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Address:        types.Address(m.Address),
		Upline:         types.Address(m.Upline),
		TotalReferrals: m.TotalReferrals,
		TotalEarnings:  types.Amount(m.TotalEarnings),
		PlanID:         m.PlanID,
		CycleNumber:    m.CycleNumber,
		RegisteredAt:   m.RegisteredAt,
	}
	if m.LastUpgradeAt != nil {
		result.LastUpgradeAt = *m.LastUpgradeAt
	}
	return result
}

type lastActionModel struct {
	grove.BaseModel `grove:"table:memberledger_last_actions"`

	Address string    `grove:"address,pk"`
	ActedAt time.Time `grove:"acted_at"`
}

// ==================== Token models ====================

type tokenModel struct {
	grove.BaseModel `grove:"table:memberledger_tokens"`

	ID          string    `grove:"id,pk"`
	Owner       string    `grove:"owner"`
	MintIndex   int64     `grove:"mint_index"`
	ImageURI    string    `grove:"image_uri"`
	Name        string    `grove:"name"`
	Description string    `grove:"description"`
	PlanID      int       `grove:"plan_id"`
	CreatedAt   time.Time `grove:"created_at"`
}

func toTokenModel(t *token.Token, mintIndex int64) *tokenModel {
	return &tokenModel{
		ID:          t.ID.String(),
		Owner:       string(t.Owner.Normalize()),
		MintIndex:   mintIndex,
		ImageURI:    t.Metadata.ImageURI,
		Name:        t.Metadata.Name,
		Description: t.Metadata.Description,
		PlanID:      t.Metadata.PlanID,
		CreatedAt:   t.Metadata.CreatedAt,
	}
}

func fromTokenModel(m *tokenModel) (*token.Token, error) {
	tokenID, err := id.ParseTokenID(m.ID)
	if err != nil {
		return nil, err
	}
	return &token.Token{
		ID:    tokenID,
		Owner: types.Address(m.Owner),
		Metadata: token.Metadata{
			ImageURI:    m.ImageURI,
			Name:        m.Name,
			Description: m.Description,
			PlanID:      m.PlanID,
			CreatedAt:   m.CreatedAt,
		},
	}, nil
}

// ==================== Transaction models ====================

// transactionModel is one slot in a recipient's history ring. The slot
// number is part of the primary key so a full ring overwrites in place.
type transactionModel struct {
	grove.BaseModel `grove:"table:memberledger_transactions"`

	Recipient string    `grove:"recipient,pk"`
	Slot      int       `grove:"slot,pk"`
	RecordID  string    `grove:"record_id"`
	FromAddr  string    `grove:"from_addr"`
	Amount    int64     `grove:"amount"`
	Kind      string    `grove:"kind"`
	Timestamp time.Time `grove:"timestamp"`
}

func toTransactionModel(rec *txlog.Record, slot int) *transactionModel {
	return &transactionModel{
		Recipient: string(rec.To.Normalize()),
		Slot:      slot,
		RecordID:  rec.ID.String(),
		FromAddr:  string(rec.From.Normalize()),
		Amount:    rec.Amount.Int64(),
		Kind:      string(rec.Kind),
		Timestamp: rec.Timestamp,
	}
}

func fromTransactionModel(m *transactionModel) (*txlog.Record, error) {
	recordID, err := id.ParseTransactionID(m.RecordID)
	if err != nil {
		return nil, err
	}
	return &txlog.Record{
		ID:        recordID,
		From:      types.Address(m.FromAddr),
		To:        types.Address(m.Recipient),
		Amount:    types.Amount(m.Amount),
		Timestamp: m.Timestamp,
		Kind:      txlog.Kind(m.Kind),
	}, nil
}

// cursorModel holds a recipient's ring fill count and overwrite cursor.
type cursorModel struct {
	grove.BaseModel `grove:"table:memberledger_tx_cursors"`

	Recipient string `grove:"recipient,pk"`
	Cursor    int    `grove:"cursor"`
	Count     int    `grove:"count"`
}

// ==================== Treasury / state models ====================

// balancesModel is a singleton row (id = 1).
type balancesModel struct {
	grove.BaseModel `grove:"table:memberledger_balances"`

	ID              int   `grove:"id,pk"`
	Owner           int64 `grove:"owner"`
	FeeSystem       int64 `grove:"fee_system"`
	Fund            int64 `grove:"fund"`
	TotalCommission int64 `grove:"total_commission"`
	TotalRevenue    int64 `grove:"total_revenue"`
}

func toBalancesModel(b *treasury.Balances) *balancesModel {
	return &balancesModel{
		ID:              1,
		Owner:           b.Owner.Int64(),
		FeeSystem:       b.FeeSystem.Int64(),
		Fund:            b.Fund.Int64(),
		TotalCommission: b.TotalCommission.Int64(),
		TotalRevenue:    b.TotalRevenue.Int64(),
	}
}

func fromBalancesModel(m *balancesModel) *treasury.Balances {
	return &treasury.Balances{
		Owner:           types.Amount(m.Owner),
		FeeSystem:       types.Amount(m.FeeSystem),
		Fund:            types.Amount(m.Fund),
		TotalCommission: types.Amount(m.TotalCommission),
		TotalRevenue:    types.Amount(m.TotalRevenue),
	}
}

// stateModel is a singleton row (id = 1).
type stateModel struct {
	grove.BaseModel `grove:"table:memberledger_state"`

	ID                   int        `grove:"id,pk"`
	Paused               bool       `grove:"paused"`
	Bootstrap            string     `grove:"bootstrap"`
	EmergencyRequestedAt *time.Time `grove:"emergency_requested_at"`
	PriceFeed            string     `grove:"price_feed"`
	BaseURI              string     `grove:"base_uri"`
}

func toStateModel(s *types.LedgerState) *stateModel {
	model := &stateModel{
		ID:        1,
		Paused:    s.Paused,
		Bootstrap: string(s.Bootstrap),
		PriceFeed: string(s.PriceFeed),
		BaseURI:   s.BaseURI,
	}
	if !s.EmergencyRequestedAt.IsZero() {
		t := s.EmergencyRequestedAt
		model.EmergencyRequestedAt = &t
	}
	return model
}

func fromStateModel(m *stateModel) *types.LedgerState {
	state := &types.LedgerState{
		Paused:    m.Paused,
		Bootstrap: types.BootstrapState(m.Bootstrap),
		PriceFeed: types.Address(m.PriceFeed),
		BaseURI:   m.BaseURI,
	}
	if m.EmergencyRequestedAt != nil {
		state.EmergencyRequestedAt = *m.EmergencyRequestedAt
	}
	return state
}
