// Package sqlite implements the membership ledger store on SQLite via
// the Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

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

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("memberledger/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("memberledger/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Plan Store ====================

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	m := toPlanModel(p)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return err
	}
	// Every plan starts in cycle 1 with an empty cycle.
	c := &cycleModel{PlanID: p.ID, CurrentCycle: 1}
	_, err := s.sdb.NewInsert(c).Exec(ctx)
	return err
}

func (s *Store) GetPlan(ctx context.Context, planID int) (*plan.Plan, error) {
	m := new(planModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", planID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrInvalidPlanID
		}
		return nil, err
	}
	return fromPlanModel(m), nil
}

func (s *Store) ListPlans(ctx context.Context) ([]*plan.Plan, error) {
	var models []planModel
	err := s.sdb.NewSelect(&models).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*plan.Plan, len(models))
	for i := range models {
		result[i] = fromPlanModel(&models[i])
	}
	return result, nil
}

func (s *Store) UpdatePlan(ctx context.Context, p *plan.Plan) error {
	m := toPlanModel(p)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ledger.ErrInvalidPlanID
	}
	return nil
}

func (s *Store) CountPlans(ctx context.Context) (int, error) {
	var total int
	err := s.sdb.NewRaw(`SELECT COUNT(*) FROM memberledger_plans`).Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) GetCycleInfo(ctx context.Context, planID int) (*plan.CycleInfo, error) {
	m := new(cycleModel)
	err := s.sdb.NewSelect(m).
		Where("plan_id = ?", planID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrInvalidPlanID
		}
		return nil, err
	}
	return fromCycleModel(m), nil
}

func (s *Store) UpdateCycleInfo(ctx context.Context, info *plan.CycleInfo) error {
	m := toCycleModel(info)
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ledger.ErrInvalidPlanID
	}
	return nil
}

// ==================== Member Store ====================

func (s *Store) CreateMember(ctx context.Context, m *member.Member) error {
	model := toMemberModel(m)
	_, err := s.sdb.NewInsert(model).Exec(ctx)
	return err
}

func (s *Store) GetMember(ctx context.Context, addr types.Address) (*member.Member, error) {
	m := new(memberModel)
	err := s.sdb.NewSelect(m).
		Where("address = ?", string(addr.Normalize())).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrNotMember
		}
		return nil, err
	}
	return fromMemberModel(m), nil
}

func (s *Store) UpdateMember(ctx context.Context, m *member.Member) error {
	model := toMemberModel(m)
	model.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(model).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ledger.ErrNotMember
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, addr types.Address) error {
	_, err := s.sdb.NewDelete((*memberModel)(nil)).
		Where("address = ?", string(addr.Normalize())).
		Exec(ctx)
	return err
}

func (s *Store) CountMembers(ctx context.Context) (int, error) {
	var total int
	err := s.sdb.NewRaw(`SELECT COUNT(*) FROM memberledger_members`).Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) GetLastAction(ctx context.Context, addr types.Address) (time.Time, error) {
	m := new(lastActionModel)
	err := s.sdb.NewSelect(m).
		Where("address = ?", string(addr.Normalize())).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return m.ActedAt, nil
}

func (s *Store) SetLastAction(ctx context.Context, addr types.Address, at time.Time) error {
	m := &lastActionModel{Address: string(addr.Normalize()), ActedAt: at}
	_, err := s.sdb.NewInsert(m).
		OnConflict("(address) DO UPDATE").
		Set("acted_at = EXCLUDED.acted_at").
		Exec(ctx)
	return err
}

// ==================== Token Store ====================

func (s *Store) CreateToken(ctx context.Context, t *token.Token) error {
	var maxIndex sql.NullInt64
	err := s.sdb.NewRaw(`SELECT MAX(mint_index) FROM memberledger_tokens`).Scan(ctx, &maxIndex)
	if err != nil {
		return err
	}

	mintIndex := int64(0)
	if maxIndex.Valid {
		mintIndex = maxIndex.Int64 + 1
	}

	m := toTokenModel(t, mintIndex)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetToken(ctx context.Context, tokenID id.TokenID) (*token.Token, error) {
	m := new(tokenModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", tokenID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return fromTokenModel(m)
}

func (s *Store) GetTokenByOwner(ctx context.Context, owner types.Address) (*token.Token, error) {
	m := new(tokenModel)
	err := s.sdb.NewSelect(m).
		Where("owner = ?", string(owner.Normalize())).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return fromTokenModel(m)
}

func (s *Store) TokenByIndex(ctx context.Context, index int) (*token.Token, error) {
	if index < 0 {
		return nil, ledger.ErrNotFound
	}
	m := new(tokenModel)
	err := s.sdb.NewSelect(m).
		OrderExpr("mint_index ASC").
		Limit(1).
		Offset(index).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return fromTokenModel(m)
}

func (s *Store) UpdateTokenMetadata(ctx context.Context, tokenID id.TokenID, md token.Metadata) error {
	res, err := s.sdb.NewUpdate((*tokenModel)(nil)).
		Set("image_uri = ?", md.ImageURI).
		Set("name = ?", md.Name).
		Set("description = ?", md.Description).
		Set("plan_id = ?", md.PlanID).
		Where("id = ?", tokenID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, tokenID id.TokenID) error {
	res, err := s.sdb.NewDelete((*tokenModel)(nil)).
		Where("id = ?", tokenID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) CountTokens(ctx context.Context) (int, error) {
	var total int
	err := s.sdb.NewRaw(`SELECT COUNT(*) FROM memberledger_tokens`).Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ==================== Transaction history ====================

func (s *Store) AppendTransaction(ctx context.Context, rec *txlog.Record) error {
	recipient := string(rec.To.Normalize())

	cur := new(cursorModel)
	err := s.sdb.NewSelect(cur).
		Where("recipient = ?", recipient).
		Scan(ctx)
	if err != nil {
		if !isNoRows(err) {
			return err
		}
		cur = &cursorModel{Recipient: recipient}
	}

	if cur.Count < txlog.Capacity {
		m := toTransactionModel(rec, cur.Count)
		if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
			return err
		}
		cur.Count++
	} else {
		// Ring full: overwrite the slot under the cursor in place.
		m := toTransactionModel(rec, cur.Cursor)
		_, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		cur.Cursor = (cur.Cursor + 1) % txlog.Capacity
	}

	_, err = s.sdb.NewInsert(cur).
		OnConflict("(recipient) DO UPDATE").
		Set("cursor = EXCLUDED.cursor").
		Set("count = EXCLUDED.count").
		Exec(ctx)
	return err
}

func (s *Store) ListTransactions(ctx context.Context, recipient types.Address) ([]*txlog.Record, error) {
	var models []transactionModel
	err := s.sdb.NewSelect(&models).
		Where("recipient = ?", string(recipient.Normalize())).
		OrderExpr("slot ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*txlog.Record, len(models))
	for i := range models {
		rec, err := fromTransactionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rec
	}
	return result, nil
}

func (s *Store) CountTransactions(ctx context.Context, recipient types.Address) (int, error) {
	var total int
	err := s.sdb.NewRaw(`SELECT COUNT(*) FROM memberledger_transactions WHERE recipient = ?`,
		string(recipient.Normalize())).Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ==================== Treasury ====================

func (s *Store) GetBalances(ctx context.Context) (*treasury.Balances, error) {
	m := new(balancesModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", 1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return &treasury.Balances{}, nil
		}
		return nil, err
	}
	return fromBalancesModel(m), nil
}

func (s *Store) UpdateBalances(ctx context.Context, b *treasury.Balances) error {
	m := toBalancesModel(b)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("owner = EXCLUDED.owner").
		Set("fee_system = EXCLUDED.fee_system").
		Set("fund = EXCLUDED.fund").
		Set("total_commission = EXCLUDED.total_commission").
		Set("total_revenue = EXCLUDED.total_revenue").
		Exec(ctx)
	return err
}

// ==================== Global state ====================

func (s *Store) GetState(ctx context.Context) (*types.LedgerState, error) {
	m := new(stateModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", 1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return &types.LedgerState{Bootstrap: types.AwaitingBootstrap}, nil
		}
		return nil, err
	}
	return fromStateModel(m), nil
}

func (s *Store) UpdateState(ctx context.Context, st *types.LedgerState) error {
	m := toStateModel(st)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("paused = EXCLUDED.paused").
		Set("bootstrap = EXCLUDED.bootstrap").
		Set("emergency_requested_at = EXCLUDED.emergency_requested_at").
		Set("price_feed = EXCLUDED.price_feed").
		Set("base_uri = EXCLUDED.base_uri").
		Exec(ctx)
	return err
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
