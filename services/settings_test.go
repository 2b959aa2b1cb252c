package services

import (
	"testing"

	"coin-earning-system/models"

	"github.com/shopspring/decimal"
)

func TestSettings_DefaultsAndOverrides(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsService(db)

	// No rows yet: compiled-in defaults apply.
	if got := settings.GetInt(models.SettingMaxTasksPerDay); got != 3 {
		t.Errorf("Expected default max tasks 3, got %d", got)
	}
	if !settings.CoinToRsRate().Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("Expected default rate 0.05, got %s", settings.CoinToRsRate())
	}

	if err := settings.Set(models.SettingMaxTasksPerDay, "5"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := settings.GetInt(models.SettingMaxTasksPerDay); got != 5 {
		t.Errorf("Expected overridden max tasks 5, got %d", got)
	}

	// Upsert, not duplicate insert.
	if err := settings.Set(models.SettingMaxTasksPerDay, "7"); err != nil {
		t.Fatalf("Second Set failed: %v", err)
	}
	if got := settings.GetInt(models.SettingMaxTasksPerDay); got != 7 {
		t.Errorf("Expected overridden max tasks 7, got %d", got)
	}

	var count int64
	db.Model(&models.AppSetting{}).Where("key = ?", models.SettingMaxTasksPerDay).Count(&count)
	if count != 1 {
		t.Errorf("Expected single settings row, got %d", count)
	}
}

func TestSettings_MalformedValueFallsBack(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsService(db)

	if err := settings.Set(models.SettingMinWithdrawRs, "not-a-number"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !settings.GetDecimal(models.SettingMinWithdrawRs).Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected fallback to default 50, got %s", settings.GetDecimal(models.SettingMinWithdrawRs))
	}
}
