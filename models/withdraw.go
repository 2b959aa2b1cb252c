package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal request lifecycle. pending and approved are the only
// non-terminal states.
const (
	WithdrawPending  = "pending"
	WithdrawApproved = "approved"
	WithdrawRejected = "rejected"
	WithdrawPaid     = "paid"
)

// WithdrawRequest is a user's cash-out of escrowed coins. The coins are
// debited from the balance at creation; coins_debited stores the exact escrow
// so a rejection refunds the same amount regardless of later rate changes.
type WithdrawRequest struct {
	ID           string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string          `gorm:"type:uuid;index;not null" json:"user_id"`
	AmountRs     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount_rs"`
	Method       string          `gorm:"type:varchar(50);not null" json:"method"`
	AccountID    string          `gorm:"type:varchar(100);not null" json:"account_id"`
	CoinsDebited int64           `gorm:"not null" json:"coins_debited"`
	Status       string          `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	AdminNote    string          `gorm:"type:text" json:"admin_note,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
