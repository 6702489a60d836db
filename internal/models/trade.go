package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradeDirectionUp   = "up"
	TradeDirectionDown = "down"
)

const (
	TradeStatusPending = "pending"
	TradeStatusWon     = "won"
	TradeStatusLost    = "lost"
)

// Trade is one user's directional wager against a round. Settlement fields
// (Status, Payout, Profit, ClosePrice, SettledAt) are written exactly once by
// the settlement engine and never touched again.
type Trade struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index"`
	RoundID   uint64 `gorm:"not null;index"`
	Direction string `gorm:"type:varchar(4);not null"`

	Amount     decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	EntryPrice decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	Status     string           `gorm:"type:varchar(10);not null;default:'pending';index"`
	Payout     decimal.Decimal  `gorm:"type:numeric(30,10);not null;default:0"`
	Profit     decimal.Decimal  `gorm:"type:numeric(30,10);not null;default:0"`
	ClosePrice *decimal.Decimal `gorm:"type:numeric(30,10)"`

	PlacedAt  time.Time  `gorm:"type:timestamptz;not null;index"`
	SettledAt *time.Time `gorm:"type:timestamptz"`
}

func (Trade) TableName() string {
	return "trades"
}
