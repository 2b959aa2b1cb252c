package models

import (
	"math/rand"
	"time"
)

// User is the local account record owning a coin balance.
// coins_balance is mutated only through the ledger service; callers must
// never write it directly.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`

	// Referral system
	RefCode      string  `gorm:"uniqueIndex;not null" json:"ref_code"`
	ReferredByID *string `gorm:"type:uuid;index" json:"referred_by_id,omitempty"`

	// Device / anti-fraud
	DeviceID   string  `json:"device_id,omitempty"`
	FraudScore float64 `gorm:"default:0" json:"fraud_score"`

	// Wallet. Derived: always equals SUM(coins) over the user's wallet
	// transactions.
	CoinsBalance int64 `gorm:"default:0" json:"coins_balance"`

	// Earning limits
	LastEarnTime   *time.Time `json:"last_earn_time,omitempty"`
	LastEarnDate   string     `gorm:"type:varchar(10);default:''" json:"last_earn_date,omitempty"`
	DailyEarnCount int        `gorm:"default:0" json:"daily_earn_count"`

	// Login streak
	LoginStreak   int    `gorm:"default:0" json:"login_streak"`
	LastLoginDate string `gorm:"type:varchar(10);default:''" json:"last_login_date,omitempty"`
	LongestStreak int    `gorm:"default:0" json:"longest_streak"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CanEarnNow reports whether the user may register another earning event on
// the given calendar day.
func (u *User) CanEarnNow(today string, maxPerDay int) bool {
	if u.LastEarnDate != today {
		return true
	}
	return u.DailyEarnCount < maxPerDay
}

const refCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRefCode generates an 8-character referral code.
func NewRefCode() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = refCodeChars[rand.Intn(len(refCodeChars))]
	}
	return string(b)
}

// DateStamp formats t as the calendar-date string used by daily counters and
// claim records.
func DateStamp(t time.Time) string {
	return t.Format("2006-01-02")
}
