package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User carries only what the trading core needs: the balance ledger head.
// Profile, auth and KYC data live in the account service.
type User struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	Balance   decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	CreatedAt time.Time       `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"type:timestamptz;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
