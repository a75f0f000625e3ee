// Package memory provides an in-memory store.Store implementation.
// It is the default backend for tests and embedded use.
package memory

import (
	"context"
	"sync"
	"time"

	ledger "github.com/xraph/memberledger"
	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/member"
	"github.com/xraph/memberledger/plan"
	ledgerstore "github.com/xraph/memberledger/store"
	"github.com/xraph/memberledger/token"
	"github.com/xraph/memberledger/treasury"
	"github.com/xraph/memberledger/txlog"
	"github.com/xraph/memberledger/types"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// ring is one recipient's bounded history with its overwrite cursor.
type ring struct {
	records []*txlog.Record
	cursor  int
}

type Store struct {
	mu sync.RWMutex

	// Plan registry
	plans  map[int]*plan.Plan
	cycles map[int]*plan.CycleInfo

	// Member directory
	members     map[types.Address]*member.Member
	lastActions map[types.Address]time.Time

	// Membership tokens, plus mint-order index for enumeration
	tokens     map[string]*token.Token
	tokenOrder []string

	// Transaction history rings, keyed by recipient
	history map[types.Address]*ring

	// Treasury + global state singletons
	balances treasury.Balances
	state    types.LedgerState
}

func New() *Store {
	return &Store{
		plans:       make(map[int]*plan.Plan),
		cycles:      make(map[int]*plan.CycleInfo),
		members:     make(map[types.Address]*member.Member),
		lastActions: make(map[types.Address]time.Time),
		tokens:      make(map[string]*token.Token),
		history:     make(map[types.Address]*ring),
		state: types.LedgerState{
			Bootstrap: types.AwaitingBootstrap,
		},
	}
}

// ==================== Plan Store ====================

func (s *Store) CreatePlan(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[p.ID]; exists {
		return ledger.ErrAlreadyExists
	}

	cp := *p
	s.plans[p.ID] = &cp
	s.cycles[p.ID] = &plan.CycleInfo{PlanID: p.ID, CurrentCycle: 1}
	return nil
}

func (s *Store) GetPlan(_ context.Context, planID int) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.plans[planID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, ledger.ErrInvalidPlanID
}

func (s *Store) ListPlans(_ context.Context) ([]*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*plan.Plan, 0, len(s.plans))
	for planID := 1; planID <= len(s.plans); planID++ {
		if p, ok := s.plans[planID]; ok {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *Store) UpdatePlan(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[p.ID]; !exists {
		return ledger.ErrInvalidPlanID
	}
	cp := *p
	s.plans[p.ID] = &cp
	return nil
}

func (s *Store) CountPlans(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plans), nil
}

func (s *Store) GetCycleInfo(_ context.Context, planID int) (*plan.CycleInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.cycles[planID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, ledger.ErrInvalidPlanID
}

func (s *Store) UpdateCycleInfo(_ context.Context, info *plan.CycleInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cycles[info.PlanID]; !exists {
		return ledger.ErrInvalidPlanID
	}
	cp := *info
	s.cycles[info.PlanID] = &cp
	return nil
}

// ==================== Member Store ====================

func (s *Store) CreateMember(_ context.Context, m *member.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := m.Address.Normalize()
	if _, exists := s.members[addr]; exists {
		return ledger.ErrAlreadyMember
	}
	cp := *m
	s.members[addr] = &cp
	return nil
}

func (s *Store) GetMember(_ context.Context, addr types.Address) (*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.members[addr.Normalize()]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, ledger.ErrNotMember
}

func (s *Store) UpdateMember(_ context.Context, m *member.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := m.Address.Normalize()
	if _, exists := s.members[addr]; !exists {
		return ledger.ErrNotMember
	}
	cp := *m
	s.members[addr] = &cp
	return nil
}

func (s *Store) DeleteMember(_ context.Context, addr types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members, addr.Normalize())
	return nil
}

func (s *Store) CountMembers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members), nil
}

func (s *Store) GetLastAction(_ context.Context, addr types.Address) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActions[addr.Normalize()], nil
}

func (s *Store) SetLastAction(_ context.Context, addr types.Address, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActions[addr.Normalize()] = at
	return nil
}

// ==================== Token Store ====================

func (s *Store) CreateToken(_ context.Context, t *token.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := t.ID.String()
	if _, exists := s.tokens[key]; exists {
		return ledger.ErrAlreadyExists
	}
	cp := *t
	s.tokens[key] = &cp
	s.tokenOrder = append(s.tokenOrder, key)
	return nil
}

func (s *Store) GetToken(_ context.Context, tokenID id.TokenID) (*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.tokens[tokenID.String()]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ledger.ErrNotFound
}

func (s *Store) GetTokenByOwner(_ context.Context, owner types.Address) (*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner = owner.Normalize()
	for _, t := range s.tokens {
		if t.Owner.Normalize() == owner {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ledger.ErrNotFound
}

func (s *Store) TokenByIndex(_ context.Context, index int) (*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.tokenOrder) {
		return nil, ledger.ErrNotFound
	}
	cp := *s.tokens[s.tokenOrder[index]]
	return &cp, nil
}

func (s *Store) UpdateTokenMetadata(_ context.Context, tokenID id.TokenID, md token.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenID.String()]
	if !ok {
		return ledger.ErrNotFound
	}
	t.Metadata = md
	return nil
}

func (s *Store) DeleteToken(_ context.Context, tokenID id.TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tokenID.String()
	if _, ok := s.tokens[key]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.tokens, key)
	for i, k := range s.tokenOrder {
		if k == key {
			s.tokenOrder = append(s.tokenOrder[:i], s.tokenOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) CountTokens(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens), nil
}

// ==================== Transaction history ====================

func (s *Store) AppendTransaction(_ context.Context, rec *txlog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipient := rec.To.Normalize()
	r, ok := s.history[recipient]
	if !ok {
		r = &ring{}
		s.history[recipient] = r
	}

	cp := *rec
	if len(r.records) < txlog.Capacity {
		r.records = append(r.records, &cp)
		return nil
	}

	// Full: overwrite the oldest slot and advance the cursor.
	r.records[r.cursor] = &cp
	r.cursor = (r.cursor + 1) % txlog.Capacity
	return nil
}

func (s *Store) ListTransactions(_ context.Context, recipient types.Address) ([]*txlog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.history[recipient.Normalize()]
	if !ok {
		return []*txlog.Record{}, nil
	}

	result := make([]*txlog.Record, len(r.records))
	for i, rec := range r.records {
		cp := *rec
		result[i] = &cp
	}
	return result, nil
}

func (s *Store) CountTransactions(_ context.Context, recipient types.Address) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.history[recipient.Normalize()]; ok {
		return len(r.records), nil
	}
	return 0, nil
}

// ==================== Treasury ====================

func (s *Store) GetBalances(_ context.Context) (*treasury.Balances, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := s.balances
	return &cp, nil
}

func (s *Store) UpdateBalances(_ context.Context, b *treasury.Balances) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances = *b
	return nil
}

// ==================== Global state ====================

func (s *Store) GetState(_ context.Context) (*types.LedgerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := s.state
	return &cp, nil
}

func (s *Store) UpdateState(_ context.Context, st *types.LedgerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = *st
	return nil
}

// ==================== Core ====================

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
