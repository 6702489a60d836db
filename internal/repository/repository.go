package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"updown/internal/models"
)

// Repository is the ledger store behind the round lifecycle. Methods with a Tx
// suffix run inside a caller-owned transaction obtained via InTx; everything
// multi-row the core does (debit+insert on placement, claim+resolve+credit on
// settlement) goes through that boundary so it commits or rolls back as one.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Rounds.
	GetRoundByID(ctx context.Context, id uint64) (*models.Round, error)
	GetRoundBySlot(ctx context.Context, start, end time.Time) (*models.Round, error)
	InsertRoundIgnoreConflict(ctx context.Context, item *models.Round) error
	ListRounds(ctx context.Context, params ListRoundsParams) ([]models.Round, error)
	CountRounds(ctx context.Context, params ListRoundsParams) (int64, error)
	ListDueRoundIDs(ctx context.Context, dueBefore time.Time, limit int) ([]uint64, error)
	ClaimRoundSettlementTx(tx *gorm.DB, id uint64, price decimal.Decimal, outcome *string, settledAt time.Time) (bool, error)

	// Trades.
	InsertTradeTx(tx *gorm.DB, item *models.Trade) error
	ListPendingTradesByRoundTx(tx *gorm.DB, roundID uint64) ([]models.Trade, error)
	UpdateTradeSettlementTx(tx *gorm.DB, item *models.Trade) error
	ListTrades(ctx context.Context, params ListTradesParams) ([]models.Trade, error)
	CountTrades(ctx context.Context, params ListTradesParams) (int64, error)

	// Users.
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
	GetUserForUpdateTx(tx *gorm.DB, id uint64) (*models.User, error)
	UpdateUserBalanceTx(tx *gorm.DB, id uint64, balance decimal.Decimal, now time.Time) error

	// Ledger.
	InsertLedgerEntryTx(tx *gorm.DB, item *models.LedgerEntry) error
	ListLedgerEntries(ctx context.Context, params ListLedgerEntriesParams) ([]models.LedgerEntry, error)
	CountLedgerEntries(ctx context.Context, params ListLedgerEntriesParams) (int64, error)
}

type ListRoundsParams struct {
	Limit   int
	Offset  int
	Status  *string
	Symbol  *string
	OrderBy string
	Asc     *bool
}

type ListTradesParams struct {
	Limit   int
	Offset  int
	UserID  *uint64
	RoundID *uint64
	Status  *string
	OrderBy string
	Asc     *bool
}

type ListLedgerEntriesParams struct {
	Limit  int
	Offset int
	UserID *uint64
	Kind   *string
	Since  *time.Time
}
