package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"updown/internal/models"
	"updown/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- rounds ------------------------------------------------------------------

func (s *Store) GetRoundByID(ctx context.Context, id uint64) (*models.Round, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Round
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetRoundBySlot(ctx context.Context, start, end time.Time) (*models.Round, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Round
	err := s.db.WithContext(ctx).
		Where("start_time = ? AND end_time = ?", start, end).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// InsertRoundIgnoreConflict relies on the unique window index: a concurrent
// insert for the same slot is silently dropped and the caller re-reads.
func (s *Store) InsertRoundIgnoreConflict(ctx context.Context, item *models.Round) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "start_time"}, {Name: "end_time"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) ListRounds(ctx context.Context, params repository.ListRoundsParams) ([]models.Round, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.roundsQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "start_time")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.Round
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountRounds(ctx context.Context, params repository.ListRoundsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.roundsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) roundsQuery(ctx context.Context, params repository.ListRoundsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Round{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.TrimSpace(*params.Symbol))
	}
	return query
}

func (s *Store) ListDueRoundIDs(ctx context.Context, dueBefore time.Time, limit int) ([]uint64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&models.Round{}).
		Where("status = ? AND end_time <= ?", models.RoundStatusOpen, dueBefore).
		Order("end_time asc").
		Limit(normalizeLimit(limit, 100)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ClaimRoundSettlementTx flips the round open→settled with a conditional
// update. A false return means another worker already holds the round; the
// caller must not touch its trades.
func (s *Store) ClaimRoundSettlementTx(tx *gorm.DB, id uint64, price decimal.Decimal, outcome *string, settledAt time.Time) (bool, error) {
	if tx == nil {
		return false, nil
	}
	res := tx.Model(&models.Round{}).
		Where("id = ? AND status = ?", id, models.RoundStatusOpen).
		Updates(map[string]any{
			"status":           models.RoundStatusSettled,
			"settlement_price": price,
			"outcome":          outcome,
			"settled_at":       settledAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// --- trades ------------------------------------------------------------------

func (s *Store) InsertTradeTx(tx *gorm.DB, item *models.Trade) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.Create(item).Error
}

func (s *Store) ListPendingTradesByRoundTx(tx *gorm.DB, roundID uint64) ([]models.Trade, error) {
	if tx == nil {
		return nil, nil
	}
	var items []models.Trade
	err := tx.
		Where("round_id = ? AND status = ?", roundID, models.TradeStatusPending).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateTradeSettlementTx(tx *gorm.DB, item *models.Trade) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.Model(&models.Trade{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"status":      item.Status,
			"payout":      item.Payout,
			"profit":      item.Profit,
			"close_price": item.ClosePrice,
			"settled_at":  item.SettledAt,
		}).Error
}

func (s *Store) ListTrades(ctx context.Context, params repository.ListTradesParams) ([]models.Trade, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.tradesQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "placed_at")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.Trade
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountTrades(ctx context.Context, params repository.ListTradesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.tradesQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) tradesQuery(ctx context.Context, params repository.ListTradesParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Trade{})
	if params.UserID != nil && *params.UserID > 0 {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.RoundID != nil && *params.RoundID > 0 {
		query = query.Where("round_id = ?", *params.RoundID)
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

// --- users -------------------------------------------------------------------

func (s *Store) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetUserForUpdateTx takes a row lock so concurrent debits and settlement
// credits for the same user serialize instead of losing updates.
func (s *Store) GetUserForUpdateTx(tx *gorm.DB, id uint64) (*models.User, error) {
	if tx == nil {
		return nil, nil
	}
	var item models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateUserBalanceTx(tx *gorm.DB, id uint64, balance decimal.Decimal, now time.Time) error {
	if tx == nil {
		return nil
	}
	return tx.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    balance,
			"updated_at": now,
		}).Error
}

// --- ledger ------------------------------------------------------------------

func (s *Store) InsertLedgerEntryTx(tx *gorm.DB, item *models.LedgerEntry) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.Create(item).Error
}

func (s *Store) ListLedgerEntries(ctx context.Context, params repository.ListLedgerEntriesParams) ([]models.LedgerEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.ledgerQuery(ctx, params).Order("created_at desc")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.LedgerEntry
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountLedgerEntries(ctx context.Context, params repository.ListLedgerEntriesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.ledgerQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ledgerQuery(ctx context.Context, params repository.ListLedgerEntriesParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if params.UserID != nil && *params.UserID > 0 {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Kind != nil && strings.TrimSpace(*params.Kind) != "" {
		query = query.Where("kind = ?", strings.TrimSpace(*params.Kind))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

// --- helpers -----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
