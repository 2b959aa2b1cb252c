package models

import "time"

// Repeatable bonus identifiers.
const (
	BonusDaily            = "daily_bonus"
	ChallengeCompleteTask = "challenge_complete_3_tasks"
	ChallengeEarnCoins    = "challenge_earn_100_coins"
	ChallengeStreak       = "challenge_streak_3_days"
)

// BonusClaim marks a repeatable bonus as granted for one user on one
// calendar day. The composite unique index makes the insert the atomic
// once-per-day gate; it is created in the same transaction as the wallet
// credit.
type BonusClaim struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_bonus_claim,priority:1" json:"user_id"`
	BonusID   string `gorm:"type:varchar(50);not null;uniqueIndex:idx_bonus_claim,priority:2" json:"bonus_id"`
	ClaimDate string `gorm:"type:varchar(10);not null;uniqueIndex:idx_bonus_claim,priority:3" json:"claim_date"`
	Coins     int64  `gorm:"not null" json:"coins"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
