package services

import (
	"testing"

	"coin-earning-system/models"

	"github.com/shopspring/decimal"
)

func TestUserOverview(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsService(db)
	ledger := NewLedgerService(db, settings)
	withdrawals := NewWithdrawService(db, ledger, settings)
	analytics := NewAnalyticsService(db, ledger)
	user := createTestUser(t, db, "statser")

	if _, err := ledger.Apply(user.ID, models.TxEarn, 1500, decimal.Zero, "tasks"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := ledger.Apply(user.ID, models.TxBonus, 30, decimal.Zero, "bonus"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := withdrawals.Create(user.ID, decimal.NewFromInt(50), "upi", "statser@upi"); err != nil {
		t.Fatalf("Withdraw create failed: %v", err)
	}

	overview, err := analytics.UserOverview(user.ID)
	if err != nil {
		t.Fatalf("UserOverview failed: %v", err)
	}

	// Withdrawals are excluded from earning totals.
	if overview.Earnings.Total != 1530 {
		t.Errorf("Expected total earnings 1530, got %d", overview.Earnings.Total)
	}
	if overview.Earnings.Today != 1530 {
		t.Errorf("Expected today's earnings 1530, got %d", overview.Earnings.Today)
	}
	if len(overview.Earnings.DailyBreakdown) != 7 {
		t.Errorf("Expected 7-day breakdown, got %d entries", len(overview.Earnings.DailyBreakdown))
	}
	if overview.Earnings.DailyBreakdown[0].Coins != 1530 {
		t.Errorf("Expected today's breakdown 1530, got %d", overview.Earnings.DailyBreakdown[0].Coins)
	}

	if !overview.Withdrawals.TotalRs.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected withdrawn total 50, got %s", overview.Withdrawals.TotalRs)
	}
	if overview.Withdrawals.PendingCount != 1 {
		t.Errorf("Expected 1 pending withdrawal, got %d", overview.Withdrawals.PendingCount)
	}
}

func TestAchievements(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewSettingsService(db))
	analytics := NewAnalyticsService(db, ledger)
	user := createTestUser(t, db, "achiever")

	none, err := analytics.Achievements(user.ID)
	if err != nil {
		t.Fatalf("Achievements failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no achievements for a fresh user, got %v", none)
	}

	if _, err := ledger.Apply(user.ID, models.TxEarn, 5500, decimal.Zero, "grind"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	unlocked, err := analytics.Achievements(user.ID)
	if err != nil {
		t.Fatalf("Achievements failed: %v", err)
	}

	ids := make(map[string]bool)
	for _, a := range unlocked {
		ids[a.ID] = true
	}
	if !ids["earner_1000"] || !ids["earner_5000"] {
		t.Errorf("Expected earner_1000 and earner_5000 unlocked, got %v", unlocked)
	}
	if ids["earner_10000"] {
		t.Errorf("earner_10000 should not unlock at 5500 coins, got %v", unlocked)
	}
}
