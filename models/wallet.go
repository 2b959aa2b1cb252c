package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of ledger entry kinds.
type TransactionType string

const (
	TxEarn     TransactionType = "earn"
	TxWithdraw TransactionType = "withdraw"
	TxBonus    TransactionType = "bonus"
	TxReferral TransactionType = "referral"
)

// WalletTransaction is one immutable entry in the append-only coin ledger.
// Rows are created once and never updated or deleted; ordering is by
// created_at.
type WalletTransaction struct {
	ID       string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string          `gorm:"type:uuid;index;not null" json:"user_id"`
	Type     TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Coins    int64           `gorm:"not null" json:"coins"`
	AmountRs decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"amount_rs"`
	Note     string          `gorm:"type:varchar(255)" json:"note"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// EarningTypes are the transaction kinds counted as income in analytics and
// achievement sums.
var EarningTypes = []TransactionType{TxEarn, TxBonus, TxReferral}
