package services

import (
	"errors"
	"fmt"
	"time"

	"coin-earning-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BonusService grants the repeatable bonuses: daily login bonus, streak
// bonus, and daily challenges. Every once-per-day grant goes through a
// claim record inserted in the same transaction as the wallet credit, so a
// retried or concurrent claim cannot double-pay.
type BonusService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Settings *SettingsService
}

func NewBonusService(db *gorm.DB, ledger *LedgerService, settings *SettingsService) *BonusService {
	return &BonusService{DB: db, Ledger: ledger, Settings: settings}
}

// grantOnce credits coins for (user, bonusID, today) at most once. The
// unique claim index resolves races: of two concurrent claims exactly one
// inserts and credits, the other gets ErrAlreadyClaimed.
func (s *BonusService) grantOnce(userID, bonusID string, coins int64, note string) error {
	today := models.DateStamp(time.Now())
	return s.DB.Transaction(func(tx *gorm.DB) error {
		claim := models.BonusClaim{
			ID:        uuid.NewString(),
			UserID:    userID,
			BonusID:   bonusID,
			ClaimDate: today,
			Coins:     coins,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "bonus_id"}, {Name: "claim_date"},
			},
			DoNothing: true,
		}).Create(&claim)
		if res.Error != nil {
			return fmt.Errorf("bonus claim insert: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}

		_, err := s.Ledger.ApplyTx(tx, userID, models.TxBonus, coins, decimal.Zero, note)
		return err
	})
}

// claimedToday reports whether (user, bonusID) was already claimed today.
func (s *BonusService) claimedToday(userID, bonusID string) (bool, error) {
	var n int64
	err := s.DB.Model(&models.BonusClaim{}).
		Where("user_id = ? AND bonus_id = ? AND claim_date = ?", userID, bonusID, models.DateStamp(time.Now())).
		Count(&n).Error
	return n > 0, err
}

// DailyBonusStatus describes the daily bonus without claiming it.
type DailyBonusStatus struct {
	AlreadyClaimed bool   `json:"already_claimed"`
	BonusAmount    int64  `json:"bonus_amount"`
	LastClaimed    string `json:"last_claimed,omitempty"`
}

func (s *BonusService) DailyStatus(userID string) (*DailyBonusStatus, error) {
	claimed, err := s.claimedToday(userID, models.BonusDaily)
	if err != nil {
		return nil, err
	}

	var last models.BonusClaim
	lastClaimed := ""
	err = s.DB.Where("user_id = ? AND bonus_id = ?", userID, models.BonusDaily).
		Order("claim_date DESC").
		First(&last).Error
	if err == nil {
		lastClaimed = last.ClaimDate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &DailyBonusStatus{
		AlreadyClaimed: claimed,
		BonusAmount:    s.Settings.GetInt64(models.SettingDailyBonusCoins),
		LastClaimed:    lastClaimed,
	}, nil
}

// ClaimDaily grants today's login bonus once.
func (s *BonusService) ClaimDaily(userID string) (int64, error) {
	coins := s.Settings.GetInt64(models.SettingDailyBonusCoins)
	if err := s.grantOnce(userID, models.BonusDaily, coins, "Daily login bonus"); err != nil {
		return 0, err
	}
	return coins, nil
}

// LoginResult reports the outcome of a streak update.
type LoginResult struct {
	Streak int   `json:"streak"`
	Bonus  int64 `json:"bonus"`
}

// streakBonus scales with streak length, capped at 50 coins.
func streakBonus(streak int) int64 {
	bonus := int64(streak) * 2
	if bonus > 50 {
		bonus = 50
	}
	return bonus
}

// RecordLogin updates the consecutive-day login streak. A consecutive day
// extends the streak and pays the streak bonus through the ledger; a gap
// resets the streak to 1 with no bonus; a repeat login the same day is a
// no-op.
func (s *BonusService) RecordLogin(userID string) (*LoginResult, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	today := models.DateStamp(time.Now())
	if user.LastLoginDate == today {
		return &LoginResult{Streak: user.LoginStreak}, nil
	}

	newStreak := 1
	var bonus int64
	if user.LastLoginDate != "" {
		lastDay, err := time.Parse("2006-01-02", user.LastLoginDate)
		if err == nil {
			todayDay, _ := time.Parse("2006-01-02", today)
			if int(todayDay.Sub(lastDay).Hours()/24) == 1 {
				newStreak = user.LoginStreak + 1
				bonus = streakBonus(newStreak)
			}
		}
	}

	longest := user.LongestStreak
	if newStreak > longest {
		longest = newStreak
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Guard on the stored login date so a concurrent login for the same
		// day updates the streak exactly once.
		res := tx.Model(&models.User{}).
			Where("id = ? AND last_login_date = ?", userID, user.LastLoginDate).
			Updates(map[string]interface{}{
				"login_streak":    newStreak,
				"last_login_date": today,
				"longest_streak":  longest,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			bonus = 0 // another request already recorded today's login
			return nil
		}
		if bonus > 0 {
			_, err := s.Ledger.ApplyTx(tx, userID, models.TxBonus, bonus,
				decimal.Zero, fmt.Sprintf("Login streak bonus (%d days)", newStreak))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Streak: newStreak, Bonus: bonus}, nil
}

// Challenge is one daily challenge with live progress.
type Challenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Progress    int64  `json:"progress"`
	Target      int64  `json:"target"`
	Reward      int64  `json:"reward"`
	Completed   bool   `json:"completed"`
	Claimed     bool   `json:"claimed"`
}

func (s *BonusService) challengeProgress(userID, challengeID string) (progress, target, reward int64, err error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch challengeID {
	case models.ChallengeCompleteTask:
		var n int64
		err = s.DB.Model(&models.UserTask{}).
			Where("user_id = ? AND status = ? AND completed_at >= ?", userID, models.UserTaskCompleted, startOfDay).
			Count(&n).Error
		return n, 3, 30, err
	case models.ChallengeEarnCoins:
		var sum int64
		sum, err = s.Ledger.SumCoins(userID, models.EarningTypes, startOfDay)
		return sum, 100, 50, err
	case models.ChallengeStreak:
		var user models.User
		if err = s.DB.First(&user, "id = ?", userID).Error; err != nil {
			return 0, 3, 20, err
		}
		return int64(user.LoginStreak), 3, 20, nil
	default:
		return 0, 0, 0, ErrNotFound
	}
}

var challengeMeta = []struct {
	id, title, description string
}{
	{models.ChallengeCompleteTask, "Complete 3 Tasks", "Finish 3 tasks today"},
	{models.ChallengeEarnCoins, "Earn 100 Coins", "Earn 100 coins today"},
	{models.ChallengeStreak, "3 Day Streak", "Maintain a 3 day login streak"},
}

// Challenges lists today's challenges with progress and claim state.
func (s *BonusService) Challenges(userID string) ([]Challenge, error) {
	out := make([]Challenge, 0, len(challengeMeta))
	for _, meta := range challengeMeta {
		progress, target, reward, err := s.challengeProgress(userID, meta.id)
		if err != nil {
			return nil, err
		}
		claimed, err := s.claimedToday(userID, meta.id)
		if err != nil {
			return nil, err
		}
		out = append(out, Challenge{
			ID:          meta.id,
			Title:       meta.title,
			Description: meta.description,
			Progress:    progress,
			Target:      target,
			Reward:      reward,
			Completed:   progress >= target,
			Claimed:     claimed,
		})
	}
	return out, nil
}

// ClaimChallenge re-checks completion and grants the challenge reward once
// per day.
func (s *BonusService) ClaimChallenge(userID, challengeID string) (int64, error) {
	progress, target, reward, err := s.challengeProgress(userID, challengeID)
	if err != nil {
		return 0, err
	}
	if progress < target {
		return 0, ErrChallengeIncomplete
	}
	if err := s.grantOnce(userID, challengeID, reward, "Daily challenge: "+challengeID); err != nil {
		return 0, err
	}
	return reward, nil
}
