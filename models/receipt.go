package models

import "time"

// CPXReceipt records one CPX postback, keyed by the partner's transaction id.
// The unique index is the idempotency guard: concurrent postbacks carrying
// the same trans_id resolve to exactly one inserted row. applied flips to
// true at most once, when the wallet credit is appended.
type CPXReceipt struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	TransID     string `gorm:"uniqueIndex;not null" json:"trans_id"`
	UserID      string `gorm:"type:uuid;index;not null" json:"user_id"`
	Event       string `gorm:"type:varchar(20);default:'complete'" json:"event"` // complete|out|bonus|cancel
	Status      int    `gorm:"default:1" json:"status"`                          // 1=completed, 2=reversal
	AmountLocal int64  `gorm:"default:0" json:"amount_local"`
	Applied     bool   `gorm:"default:false" json:"applied"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TapjoyReceipt records one Tapjoy offerwall postback. Same idempotency
// contract as CPXReceipt.
type TapjoyReceipt struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	TransactionID  string `gorm:"uniqueIndex;not null" json:"transaction_id"`
	UserID         string `gorm:"type:uuid;index;not null" json:"user_id"`
	CurrencyAmount int64  `gorm:"default:0" json:"currency_amount"`
	Applied        bool   `gorm:"default:false" json:"applied"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
