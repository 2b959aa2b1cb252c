package services

import (
	"fmt"
	"log"
	"time"

	"coin-earning-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FraudService accumulates deterministic rule-based risk signals. Scoring is
// advisory: recording an event never blocks the user by itself, and the
// cumulative fraud_score only ever grows.
type FraudService struct {
	DB *gorm.DB
}

func NewFraudService(db *gorm.DB) *FraudService {
	return &FraudService{DB: db}
}

// RecordEvent appends a fraud event and adds its score to the user's
// cumulative fraud_score in one transaction.
func (s *FraudService) RecordEvent(userID, eventType string, score float64, reason, ipAddress, deviceID string) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("fraud_score", gorm.Expr("fraud_score + ?", score))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(&models.FraudEvent{
			ID:        uuid.NewString(),
			UserID:    userID,
			EventType: eventType,
			Score:     score,
			Reason:    reason,
			IPAddress: ipAddress,
			DeviceID:  deviceID,
		}).Error
	})
	if err != nil {
		log.Printf("[FRAUD] failed to record %s event for %s: %v", eventType, userID, err)
	}
}

// CheckTaskSpeed verifies the user spent realistic time on the task. A
// completion below minSeconds records a suspicious_speed event first, then
// returns ErrTaskTooFast; the caller must not grant the reward. Recording
// before rejecting preserves the audit trail of every attempt.
func (s *FraudService) CheckTaskSpeed(userTask *models.UserTask, minSeconds int) error {
	if userTask.CompletedAt == nil {
		return nil
	}

	duration := userTask.CompletedAt.Sub(userTask.StartedAt)
	if duration < time.Duration(minSeconds)*time.Second {
		s.RecordEvent(userTask.UserID, models.FraudSuspiciousSpeed, models.ScoreSuspiciousSpeed,
			fmt.Sprintf("task %s completed in %.1fs (< %ds)", userTask.TaskID, duration.Seconds(), minSeconds),
			userTask.IPAddress, userTask.DeviceID)
		return ErrTaskTooFast
	}
	return nil
}

// ListEvents returns a user's fraud events, newest first.
func (s *FraudService) ListEvents(userID string, limit int) ([]models.FraudEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var events []models.FraudEvent
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
