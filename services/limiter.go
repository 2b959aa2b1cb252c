package services

import (
	"fmt"
	"time"

	"coin-earning-system/models"

	"gorm.io/gorm"
)

// EarningLimiter enforces the per-day earning caps. RegisterEarn must be
// called exactly once per successfully granted reward, after the ledger
// append succeeds, so a failed credit never consumes quota.
type EarningLimiter struct {
	DB    *gorm.DB
	Fraud *FraudService
}

func NewEarningLimiter(db *gorm.DB, fraud *FraudService) *EarningLimiter {
	return &EarningLimiter{DB: db, Fraud: fraud}
}

// CanEarnNow reports whether the user may register another earning event
// today. Pure query, no side effects.
func (s *EarningLimiter) CanEarnNow(userID string, maxPerDay int) (bool, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, ErrNotFound
		}
		return false, err
	}
	return user.CanEarnNow(models.DateStamp(time.Now()), maxPerDay), nil
}

// RegisterEarn records one earning event against today's counter: a reset
// to 1 on a new calendar day, an increment otherwise. Both branches are
// guarded single-statement updates so concurrent earns cannot overwrite each
// other's counts.
func (s *EarningLimiter) RegisterEarn(userID string) error {
	now := time.Now()
	today := models.DateStamp(now)

	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND last_earn_date <> ?", userID, today).
			Updates(map[string]interface{}{
				"last_earn_date":   today,
				"daily_earn_count": 1,
				"last_earn_time":   now,
			})
		if res.Error != nil {
			return fmt.Errorf("register earn reset: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}

		res = tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"daily_earn_count": gorm.Expr("daily_earn_count + 1"),
				"last_earn_time":   now,
			})
		if res.Error != nil {
			return fmt.Errorf("register earn increment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CheckDailyTaskLimit blocks new task starts once the user has started
// maxTasksPerDay countable tasks today. Offerwall and instant-game tasks are
// excluded from the count; they are capped independently per task type. A
// breach is recorded as a limit_exceeded fraud event before the rejection is
// returned, so the audit trail persists.
func (s *EarningLimiter) CheckDailyTaskLimit(user *models.User, maxTasksPerDay int) error {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	excluded := make([]models.TaskType, 0, len(models.OfferwallTaskTypes)+len(models.GameTaskTypes))
	excluded = append(excluded, models.OfferwallTaskTypes...)
	excluded = append(excluded, models.GameTaskTypes...)

	var countToday int64
	err := s.DB.Model(&models.UserTask{}).
		Joins("JOIN tasks ON tasks.id = user_tasks.task_id").
		Where("user_tasks.user_id = ? AND user_tasks.started_at >= ?", user.ID, startOfDay).
		Where("tasks.type NOT IN ?", excluded).
		Count(&countToday).Error
	if err != nil {
		return fmt.Errorf("daily task count: %w", err)
	}

	if countToday >= int64(maxTasksPerDay) {
		s.Fraud.RecordEvent(user.ID, models.FraudLimitExceeded, models.ScoreLimitExceeded,
			fmt.Sprintf("attempted more than %d tasks today (count=%d)", maxTasksPerDay, countToday),
			"", user.DeviceID)
		return ErrLimitReached
	}
	return nil
}
