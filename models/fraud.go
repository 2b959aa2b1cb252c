package models

import "time"

// Fraud event types.
const (
	FraudSuspiciousSpeed = "suspicious_speed"
	FraudLimitExceeded   = "limit_exceeded"
	FraudOther           = "other"
)

// Fixed rule scores.
const (
	ScoreSuspiciousSpeed = 5.0
	ScoreLimitExceeded   = 10.0
)

// FraudEvent is one append-only risk signal. Creating an event also adds its
// score to the user's cumulative fraud_score, which never decreases.
type FraudEvent struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string  `gorm:"type:uuid;index;not null" json:"user_id"`
	EventType string  `gorm:"type:varchar(50);not null" json:"event_type"`
	Score     float64 `gorm:"default:0" json:"score"`
	Reason    string  `gorm:"type:text" json:"reason"`
	IPAddress string  `json:"ip_address,omitempty"`
	DeviceID  string  `json:"device_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
