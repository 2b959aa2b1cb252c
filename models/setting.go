package models

// AppSetting is one runtime configuration value. Settings are read from the
// table at the time of each computation so an operator change applies to new
// operations without a redeploy.
type AppSetting struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Key   string `gorm:"uniqueIndex;not null" json:"key"`
	Value string `gorm:"not null" json:"value"`
}

// Setting keys and their defaults, used when no row exists.
const (
	SettingCoinToRsRate    = "COIN_TO_RS_RATE"
	SettingMinWithdrawRs   = "MIN_WITHDRAW_RS"
	SettingDailyBonusCoins = "DAILY_BONUS_COINS"
	SettingMaxEarnsPerDay  = "MAX_EARNS_PER_DAY"
	SettingMaxTasksPerDay  = "MAX_TASKS_PER_DAY"
	SettingMinTaskSeconds  = "MIN_TASK_SECONDS"
)

var SettingDefaults = map[string]string{
	SettingCoinToRsRate:    "0.05",
	SettingMinWithdrawRs:   "50",
	SettingDailyBonusCoins: "20",
	SettingMaxEarnsPerDay:  "100",
	SettingMaxTasksPerDay:  "3",
	SettingMinTaskSeconds:  "8",
}
