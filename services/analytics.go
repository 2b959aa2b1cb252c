package services

import (
	"time"

	"coin-earning-system/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AnalyticsService derives user-facing statistics from the ledger and the
// task history. Read-only.
type AnalyticsService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewAnalyticsService(db *gorm.DB, ledger *LedgerService) *AnalyticsService {
	return &AnalyticsService{DB: db, Ledger: ledger}
}

// DailyEarning is one day's earned total.
type DailyEarning struct {
	Date  string `json:"date"`
	Coins int64  `json:"coins"`
}

// Overview aggregates earnings, tasks, withdrawals and referrals for one
// user.
type Overview struct {
	Earnings struct {
		Total          int64          `json:"total"`
		Today          int64          `json:"today"`
		ThisWeek       int64          `json:"this_week"`
		ThisMonth      int64          `json:"this_month"`
		DailyBreakdown []DailyEarning `json:"daily_breakdown"`
	} `json:"earnings"`
	Tasks struct {
		TotalCompleted int64            `json:"total_completed"`
		Today          int64            `json:"today"`
		ThisWeek       int64            `json:"this_week"`
		ByType         map[string]int64 `json:"by_type"`
	} `json:"tasks"`
	Withdrawals struct {
		TotalRs      decimal.Decimal `json:"total_rs"`
		PendingCount int64           `json:"pending_count"`
	} `json:"withdrawals"`
	Referrals struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	} `json:"referrals"`
	LoginStreak   int `json:"login_streak"`
	LongestStreak int `json:"longest_streak"`
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *AnalyticsService) completedTaskCount(userID string, since time.Time) (int64, error) {
	var n int64
	q := s.DB.Model(&models.UserTask{}).
		Where("user_id = ? AND status = ?", userID, models.UserTaskCompleted)
	if !since.IsZero() {
		q = q.Where("completed_at >= ?", since)
	}
	err := q.Count(&n).Error
	return n, err
}

// UserOverview builds the full analytics payload for one user.
func (s *AnalyticsService) UserOverview(userID string) (*Overview, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	today := startOfDay(now)
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)

	out := &Overview{}
	out.LoginStreak = user.LoginStreak
	out.LongestStreak = user.LongestStreak

	var err error
	if out.Earnings.Total, err = s.Ledger.SumCoins(userID, models.EarningTypes, time.Time{}); err != nil {
		return nil, err
	}
	if out.Earnings.Today, err = s.Ledger.SumCoins(userID, models.EarningTypes, today); err != nil {
		return nil, err
	}
	if out.Earnings.ThisWeek, err = s.Ledger.SumCoins(userID, models.EarningTypes, weekAgo); err != nil {
		return nil, err
	}
	if out.Earnings.ThisMonth, err = s.Ledger.SumCoins(userID, models.EarningTypes, monthAgo); err != nil {
		return nil, err
	}

	// Last 7 days, most recent first.
	out.Earnings.DailyBreakdown = make([]DailyEarning, 0, 7)
	for i := 0; i < 7; i++ {
		dayStart := today.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		var sum *int64
		err := s.DB.Model(&models.WalletTransaction{}).
			Where("user_id = ? AND type IN ? AND created_at >= ? AND created_at < ?",
				userID, models.EarningTypes, dayStart, dayEnd).
			Select("SUM(coins)").Scan(&sum).Error
		if err != nil {
			return nil, err
		}
		coins := int64(0)
		if sum != nil {
			coins = *sum
		}
		out.Earnings.DailyBreakdown = append(out.Earnings.DailyBreakdown, DailyEarning{
			Date:  models.DateStamp(dayStart),
			Coins: coins,
		})
	}

	if out.Tasks.TotalCompleted, err = s.completedTaskCount(userID, time.Time{}); err != nil {
		return nil, err
	}
	if out.Tasks.Today, err = s.completedTaskCount(userID, today); err != nil {
		return nil, err
	}
	if out.Tasks.ThisWeek, err = s.completedTaskCount(userID, weekAgo); err != nil {
		return nil, err
	}

	type typeCount struct {
		Type  string
		Count int64
	}
	var byType []typeCount
	err = s.DB.Model(&models.UserTask{}).
		Select("tasks.type AS type, COUNT(user_tasks.id) AS count").
		Joins("JOIN tasks ON tasks.id = user_tasks.task_id").
		Where("user_tasks.user_id = ? AND user_tasks.status = ?", userID, models.UserTaskCompleted).
		Group("tasks.type").
		Scan(&byType).Error
	if err != nil {
		return nil, err
	}
	out.Tasks.ByType = make(map[string]int64, len(byType))
	for _, tc := range byType {
		out.Tasks.ByType[tc.Type] = tc.Count
	}

	var totalRs decimal.NullDecimal
	err = s.DB.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND type = ?", userID, models.TxWithdraw).
		Where("coins < 0").
		Select("SUM(amount_rs)").Scan(&totalRs).Error
	if err != nil {
		return nil, err
	}
	if totalRs.Valid {
		out.Withdrawals.TotalRs = totalRs.Decimal
	}
	err = s.DB.Model(&models.WithdrawRequest{}).
		Where("user_id = ? AND status = ?", userID, models.WithdrawPending).
		Count(&out.Withdrawals.PendingCount).Error
	if err != nil {
		return nil, err
	}

	err = s.DB.Model(&models.User{}).
		Where("referred_by_id = ?", userID).
		Count(&out.Referrals.Total).Error
	if err != nil {
		return nil, err
	}
	err = s.DB.Model(&models.User{}).
		Where("referred_by_id = ? AND last_earn_date >= ?", userID, models.DateStamp(weekAgo)).
		Count(&out.Referrals.Active).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Achievement is an unlocked badge derived from ledger and activity sums.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type achievementRule struct {
	id, name, description string
	threshold             int64
}

var earningAchievements = []achievementRule{
	{"earner_1000", "First Thousand", "Earned 1,000 coins", 1000},
	{"earner_5000", "Big Earner", "Earned 5,000 coins", 5000},
	{"earner_10000", "Coin Master", "Earned 10,000 coins", 10000},
}

var taskAchievements = []achievementRule{
	{"tasker_10", "Task Starter", "Completed 10 tasks", 10},
	{"tasker_50", "Task Master", "Completed 50 tasks", 50},
	{"tasker_100", "Task Legend", "Completed 100 tasks", 100},
}

var streakAchievements = []achievementRule{
	{"streak_7", "Week Warrior", "7 day login streak", 7},
	{"streak_30", "Month Master", "30 day login streak", 30},
}

var referralAchievements = []achievementRule{
	{"referrer_5", "Social Butterfly", "Referred 5 friends", 5},
	{"referrer_20", "Community Builder", "Referred 20 friends", 20},
}

// Achievements lists every badge the user has unlocked.
func (s *AnalyticsService) Achievements(userID string) ([]Achievement, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	totalEarned, err := s.Ledger.SumCoins(userID, models.EarningTypes, time.Time{})
	if err != nil {
		return nil, err
	}
	totalTasks, err := s.completedTaskCount(userID, time.Time{})
	if err != nil {
		return nil, err
	}
	var totalReferrals int64
	if err := s.DB.Model(&models.User{}).
		Where("referred_by_id = ?", userID).
		Count(&totalReferrals).Error; err != nil {
		return nil, err
	}

	unlocked := []Achievement{}
	appendUnlocked := func(rules []achievementRule, value int64) {
		for _, r := range rules {
			if value >= r.threshold {
				unlocked = append(unlocked, Achievement{ID: r.id, Name: r.name, Description: r.description})
			}
		}
	}
	appendUnlocked(earningAchievements, totalEarned)
	appendUnlocked(taskAchievements, totalTasks)
	appendUnlocked(streakAchievements, int64(user.LoginStreak))
	appendUnlocked(referralAchievements, totalReferrals)

	return unlocked, nil
}
