package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoundStatusOpen    = "open"
	RoundStatusSettled = "settled"
)

const (
	RoundOutcomeUp   = "up"
	RoundOutcomeDown = "down"
	RoundOutcomeFlat = "flat"
)

// Round is one fixed-length betting window. The unique index on
// (start_time, end_time) is what makes concurrent round creation safe: at most
// one row per window slot can ever exist.
type Round struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Symbol    string    `gorm:"type:varchar(20);not null"`
	StartTime time.Time `gorm:"type:timestamptz;not null;uniqueIndex:idx_rounds_window"`
	EndTime   time.Time `gorm:"type:timestamptz;not null;uniqueIndex:idx_rounds_window;index"`
	Status    string    `gorm:"type:varchar(10);not null;default:'open';index"`

	OpenPrice       *decimal.Decimal `gorm:"type:numeric(30,10)"`
	SettlementPrice *decimal.Decimal `gorm:"type:numeric(30,10)"`
	Outcome         *string          `gorm:"type:varchar(10)"`
	SettledAt       *time.Time       `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Round) TableName() string {
	return "rounds"
}

func (r *Round) IsOpen() bool {
	return r != nil && r.Status == RoundStatusOpen
}
