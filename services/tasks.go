package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"coin-earning-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RewardPolicy computes the coin reward for one task completion.
type RewardPolicy func(task *models.Task) int64

func fixedReward(coins int64) RewardPolicy {
	return func(*models.Task) int64 { return coins }
}

func randomReward(min, max int64) RewardPolicy {
	return func(*models.Task) int64 { return min + rand.Int63n(max-min+1) }
}

// GameRewardPolicies maps each instant-game task type to its reward rule.
// The set is closed: a game type without an entry is a catalog bug surfaced
// at completion time, not silently zero-rewarded.
var GameRewardPolicies = map[models.TaskType]RewardPolicy{
	models.TaskScratchCard: randomReward(20, 150),
	models.TaskSpinWheel:   randomReward(20, 150),
	models.TaskPuzzle:      fixedReward(50),
	models.TaskQuiz:        fixedReward(50),
}

// TaskService owns the task catalog and the start/complete reward flow.
type TaskService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Limiter  *EarningLimiter
	Fraud    *FraudService
	Settings *SettingsService
}

func NewTaskService(db *gorm.DB, ledger *LedgerService, limiter *EarningLimiter, fraud *FraudService, settings *SettingsService) *TaskService {
	return &TaskService{DB: db, Ledger: ledger, Limiter: limiter, Fraud: fraud, Settings: settings}
}

// ListActive returns the active catalog ordered by creation.
func (s *TaskService) ListActive() ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.Where("is_active = ?", true).Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

// CreateTask adds a catalog entry (admin glue).
func (s *TaskService) CreateTask(taskType models.TaskType, title, description string, rewardCoins int64, adNetwork, adPlacementID string) (*models.Task, error) {
	if title == "" || taskType == "" {
		return nil, ErrValidation
	}
	task := &models.Task{
		ID:            uuid.NewString(),
		Type:          taskType,
		Title:         title,
		Slug:          slug.Make(title),
		Description:   description,
		RewardCoins:   rewardCoins,
		AdNetwork:     adNetwork,
		AdPlacementID: adPlacementID,
		IsActive:      true,
	}
	if err := s.DB.Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// SetTaskActive toggles a catalog entry.
func (s *TaskService) SetTaskActive(taskID string, active bool) error {
	res := s.DB.Model(&models.Task{}).Where("id = ?", taskID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Start opens a pending attempt at a countdown task. The daily task limit is
// checked first; a breach is already recorded as a fraud event by the
// limiter before the rejection reaches the caller.
func (s *TaskService) Start(user *models.User, taskID, ipAddress, deviceID string) (*models.UserTask, error) {
	maxPerDay := s.Settings.GetInt(models.SettingMaxTasksPerDay)
	if err := s.Limiter.CheckDailyTaskLimit(user, maxPerDay); err != nil {
		return nil, err
	}

	var task models.Task
	if err := s.DB.First(&task, "id = ? AND is_active = ?", taskID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	userTask := &models.UserTask{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TaskID:    task.ID,
		Status:    models.UserTaskPending,
		StartedAt: time.Now(),
		IPAddress: ipAddress,
		DeviceID:  deviceID,
	}
	if err := s.DB.Create(userTask).Error; err != nil {
		return nil, err
	}
	userTask.Task = task
	return userTask, nil
}

// Complete closes a pending attempt and grants the task's fixed reward.
// Order matters: the attempt is marked completed (audit trail) before the
// speed check runs, the speed check runs strictly before the ledger append,
// and the limiter quota is consumed only after the credit commits.
func (s *TaskService) Complete(userID, userTaskID string) (int64, error) {
	var userTask models.UserTask
	if err := s.DB.Preload("Task").
		First(&userTask, "id = ? AND user_id = ?", userTaskID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	maxEarns := s.Settings.GetInt(models.SettingMaxEarnsPerDay)
	ok, err := s.Limiter.CanEarnNow(userID, maxEarns)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrEarningLimitReached
	}

	// Guarded flip: two concurrent completes of the same attempt resolve to
	// exactly one winner.
	now := time.Now()
	res := s.DB.Model(&models.UserTask{}).
		Where("id = ? AND status = ?", userTaskID, models.UserTaskPending).
		Updates(map[string]interface{}{"status": models.UserTaskCompleted, "completed_at": now})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	userTask.Status = models.UserTaskCompleted
	userTask.CompletedAt = &now

	minSeconds := s.Settings.GetInt(models.SettingMinTaskSeconds)
	if err := s.Fraud.CheckTaskSpeed(&userTask, minSeconds); err != nil {
		return 0, err
	}

	reward := userTask.Task.RewardCoins
	if reward <= 0 {
		return 0, ErrValidation
	}

	if _, err := s.Ledger.Apply(userID, models.TxEarn, reward, decimal.Zero,
		fmt.Sprintf("Completed task %s", userTask.Task.Title)); err != nil {
		return 0, err
	}

	if err := s.Limiter.RegisterEarn(userID); err != nil {
		return reward, err
	}
	return reward, nil
}

// CompleteGame finishes an instant game task (scratch card, spin wheel,
// puzzle, quiz): no countdown, reward computed from the per-type policy
// table, one completion per task per day.
func (s *TaskService) CompleteGame(user *models.User, taskID, ipAddress, deviceID string) (int64, error) {
	maxPerDay := s.Settings.GetInt(models.SettingMaxTasksPerDay)
	if err := s.Limiter.CheckDailyTaskLimit(user, maxPerDay); err != nil {
		return 0, err
	}

	maxEarns := s.Settings.GetInt(models.SettingMaxEarnsPerDay)
	ok, err := s.Limiter.CanEarnNow(user.ID, maxEarns)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrEarningLimitReached
	}

	var task models.Task
	if err := s.DB.First(&task, "id = ? AND is_active = ?", taskID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	policy, isGame := GameRewardPolicies[task.Type]
	if !isGame {
		return 0, ErrValidation
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var doneToday int64
	if err := s.DB.Model(&models.UserTask{}).
		Where("user_id = ? AND task_id = ? AND status = ? AND completed_at >= ?",
			user.ID, task.ID, models.UserTaskCompleted, startOfDay).
		Count(&doneToday).Error; err != nil {
		return 0, err
	}
	if doneToday > 0 {
		return 0, ErrAlreadyCompleted
	}

	reward := policy(&task)
	if reward <= 0 {
		return 0, ErrValidation
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		userTask := &models.UserTask{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			TaskID:      task.ID,
			Status:      models.UserTaskCompleted,
			StartedAt:   now,
			CompletedAt: &now,
			IPAddress:   ipAddress,
			DeviceID:    deviceID,
		}
		if err := tx.Create(userTask).Error; err != nil {
			return err
		}
		_, err := s.Ledger.ApplyTx(tx, user.ID, models.TxEarn, reward, decimal.Zero,
			fmt.Sprintf("Completed %s: %s", task.Type, task.Title))
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := s.Limiter.RegisterEarn(user.ID); err != nil {
		return reward, err
	}
	return reward, nil
}

// ExpireStale cancels pending attempts older than maxAge. Run by the
// maintenance scheduler.
func (s *TaskService) ExpireStale(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	res := s.DB.Model(&models.UserTask{}).
		Where("status = ? AND started_at < ?", models.UserTaskPending, cutoff).
		Update("status", models.UserTaskCancelled)
	return res.RowsAffected, res.Error
}
