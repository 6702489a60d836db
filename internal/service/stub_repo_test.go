package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"updown/internal/models"
	"updown/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// InTx snapshots state before running fn and restores it when fn errors, so
// tests exercise the same all-or-nothing semantics the gorm store provides.
type stubRepo struct {
	users   map[uint64]models.User
	rounds  map[uint64]models.Round
	trades  map[uint64]models.Trade
	ledger  []models.LedgerEntry
	nextID  uint64
	inserts int

	// Failure injection.
	failInsertRound  error
	failUpdateTrade  error
	failInsertLedger error
	failListDue      error
	// When set, a conflicting round appears for any slot insert, simulating a
	// concurrent winner of the unique-index race.
	conflictRound *models.Round
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:  map[uint64]models.User{},
		rounds: map[uint64]models.Round{},
		trades: map[uint64]models.Trade{},
		nextID: 1,
	}
}

func (s *stubRepo) addUser(id uint64, balance int64) {
	s.users[id] = models.User{ID: id, Balance: decimal.NewFromInt(balance)}
}

func (s *stubRepo) id() uint64 {
	v := s.nextID
	s.nextID++
	return v
}

func (s *stubRepo) snapshot() *stubRepo {
	cp := newStubRepo()
	cp.nextID = s.nextID
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.rounds {
		cp.rounds[k] = v
	}
	for k, v := range s.trades {
		cp.trades[k] = v
	}
	cp.ledger = append([]models.LedgerEntry(nil), s.ledger...)
	return cp
}

func (s *stubRepo) restore(from *stubRepo) {
	s.users = from.users
	s.rounds = from.rounds
	s.trades = from.trades
	s.ledger = from.ledger
	s.nextID = from.nextID
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	before := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

func (s *stubRepo) GetRoundByID(ctx context.Context, id uint64) (*models.Round, error) {
	if r, ok := s.rounds[id]; ok {
		cp := r
		return &cp, nil
	}
	return nil, nil
}

func (s *stubRepo) GetRoundBySlot(ctx context.Context, start, end time.Time) (*models.Round, error) {
	for _, r := range s.rounds {
		if r.StartTime.Equal(start) && r.EndTime.Equal(end) {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) InsertRoundIgnoreConflict(ctx context.Context, item *models.Round) error {
	if s.failInsertRound != nil {
		return s.failInsertRound
	}
	if s.conflictRound != nil {
		winner := *s.conflictRound
		winner.StartTime = item.StartTime
		winner.EndTime = item.EndTime
		s.rounds[winner.ID] = winner
		item.ID = 0 // conflict: nothing inserted
		return nil
	}
	if existing, _ := s.GetRoundBySlot(ctx, item.StartTime, item.EndTime); existing != nil {
		item.ID = 0
		return nil
	}
	item.ID = s.id()
	s.rounds[item.ID] = *item
	s.inserts++
	return nil
}

func (s *stubRepo) ListRounds(ctx context.Context, params repository.ListRoundsParams) ([]models.Round, error) {
	var out []models.Round
	for _, r := range s.rounds {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRepo) CountRounds(ctx context.Context, params repository.ListRoundsParams) (int64, error) {
	return int64(len(s.rounds)), nil
}

func (s *stubRepo) ListDueRoundIDs(ctx context.Context, dueBefore time.Time, limit int) ([]uint64, error) {
	if s.failListDue != nil {
		return nil, s.failListDue
	}
	var ids []uint64
	for _, r := range s.rounds {
		if r.Status == models.RoundStatusOpen && !r.EndTime.After(dueBefore) {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

func (s *stubRepo) ClaimRoundSettlementTx(tx *gorm.DB, id uint64, price decimal.Decimal, outcome *string, settledAt time.Time) (bool, error) {
	r, ok := s.rounds[id]
	if !ok || r.Status != models.RoundStatusOpen {
		return false, nil
	}
	r.Status = models.RoundStatusSettled
	r.SettlementPrice = &price
	r.Outcome = outcome
	r.SettledAt = &settledAt
	s.rounds[id] = r
	return true, nil
}

func (s *stubRepo) InsertTradeTx(tx *gorm.DB, item *models.Trade) error {
	item.ID = s.id()
	s.trades[item.ID] = *item
	return nil
}

func (s *stubRepo) ListPendingTradesByRoundTx(tx *gorm.DB, roundID uint64) ([]models.Trade, error) {
	var out []models.Trade
	for _, t := range s.trades {
		if t.RoundID == roundID && t.Status == models.TradeStatusPending {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateTradeSettlementTx(tx *gorm.DB, item *models.Trade) error {
	if s.failUpdateTrade != nil {
		return s.failUpdateTrade
	}
	existing, ok := s.trades[item.ID]
	if !ok {
		return errors.New("trade missing")
	}
	existing.Status = item.Status
	existing.Payout = item.Payout
	existing.Profit = item.Profit
	existing.ClosePrice = item.ClosePrice
	existing.SettledAt = item.SettledAt
	s.trades[item.ID] = existing
	return nil
}

func (s *stubRepo) ListTrades(ctx context.Context, params repository.ListTradesParams) ([]models.Trade, error) {
	var out []models.Trade
	for _, t := range s.trades {
		if params.UserID != nil && t.UserID != *params.UserID {
			continue
		}
		if params.RoundID != nil && t.RoundID != *params.RoundID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *stubRepo) CountTrades(ctx context.Context, params repository.ListTradesParams) (int64, error) {
	items, _ := s.ListTrades(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (s *stubRepo) GetUserForUpdateTx(tx *gorm.DB, id uint64) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (s *stubRepo) UpdateUserBalanceTx(tx *gorm.DB, id uint64, balance decimal.Decimal, now time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return errors.New("user missing")
	}
	u.Balance = balance
	u.UpdatedAt = now
	s.users[id] = u
	return nil
}

func (s *stubRepo) InsertLedgerEntryTx(tx *gorm.DB, item *models.LedgerEntry) error {
	if s.failInsertLedger != nil {
		return s.failInsertLedger
	}
	item.ID = s.id()
	s.ledger = append(s.ledger, *item)
	return nil
}

func (s *stubRepo) ListLedgerEntries(ctx context.Context, params repository.ListLedgerEntriesParams) ([]models.LedgerEntry, error) {
	return append([]models.LedgerEntry(nil), s.ledger...), nil
}

func (s *stubRepo) CountLedgerEntries(ctx context.Context, params repository.ListLedgerEntriesParams) (int64, error) {
	return int64(len(s.ledger)), nil
}

var _ repository.Repository = (*stubRepo)(nil)
