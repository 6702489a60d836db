package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	LedgerKindDebit  = "debit"
	LedgerKindCredit = "credit"
)

// LedgerEntry records every balance mutation the core performs (wager debit at
// placement, payout credit at settlement) with a before/after snapshot, so the
// account service can reconcile balances without re-deriving trade history.
type LedgerEntry struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	Ref    string `gorm:"type:varchar(36);not null;uniqueIndex"`
	UserID uint64 `gorm:"not null;index"`
	Kind   string `gorm:"type:varchar(10);not null"`

	Amount        decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	TradeID  *uint64        `gorm:"index"`
	RoundID  *uint64        `gorm:"index"`
	Metadata datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
