package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"coin-earning-system/models"

	"github.com/shopspring/decimal"
)

func TestLedgerApply_CreditAndDebit(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsService(db)
	ledger := NewLedgerService(db, settings)
	user := createTestUser(t, db, "alice")

	rec, err := ledger.Apply(user.ID, models.TxEarn, 100, decimal.Zero, "Completed task")
	if err != nil {
		t.Fatalf("Apply credit failed: %v", err)
	}
	if rec.Coins != 100 {
		t.Errorf("Expected transaction coins 100, got %d", rec.Coins)
	}
	if got := userBalance(t, db, user.ID); got != 100 {
		t.Errorf("Expected balance 100, got %d", got)
	}

	if _, err := ledger.Apply(user.ID, models.TxWithdraw, -40, decimal.NewFromInt(2), "Withdraw request"); err != nil {
		t.Fatalf("Apply debit failed: %v", err)
	}
	if got := userBalance(t, db, user.ID); got != 60 {
		t.Errorf("Expected balance 60, got %d", got)
	}

	var count int64
	if err := db.Model(&models.WalletTransaction{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count transactions: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 ledger entries, got %d", count)
	}
}

func TestLedgerApply_InsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewSettingsService(db))
	user := createTestUser(t, db, "bob")

	if _, err := ledger.Apply(user.ID, models.TxEarn, 30, decimal.Zero, "seed"); err != nil {
		t.Fatalf("Apply credit failed: %v", err)
	}

	_, err := ledger.Apply(user.ID, models.TxWithdraw, -50, decimal.Zero, "too much")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}

	// Rejected debit must leave no trace: unchanged balance, no ledger row.
	if got := userBalance(t, db, user.ID); got != 30 {
		t.Errorf("Expected balance 30 after failed debit, got %d", got)
	}
	var count int64
	db.Model(&models.WalletTransaction{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 ledger entry after failed debit, got %d", count)
	}
}

func TestLedgerApply_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewSettingsService(db))

	_, err := ledger.Apply("00000000-0000-0000-0000-000000000000", models.TxEarn, 10, decimal.Zero, "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestLedgerApply_ConcurrentCredits(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewSettingsService(db))
	user := createTestUser(t, db, "carol")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Apply(user.ID, models.TxEarn, 10, decimal.Zero, "concurrent earn"); err != nil {
				t.Errorf("Concurrent Apply failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := userBalance(t, db, user.ID); got != 100 {
		t.Errorf("Expected balance 100 after 10 concurrent credits, got %d", got)
	}
	if err := ledger.Reconcile(user.ID); err != nil {
		t.Errorf("Reconcile failed after concurrent credits: %v", err)
	}
}

func TestLedgerReconcile_DetectsDrift(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewSettingsService(db))
	user := createTestUser(t, db, "dave")

	if _, err := ledger.Apply(user.ID, models.TxEarn, 50, decimal.Zero, "seed"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := ledger.Reconcile(user.ID); err != nil {
		t.Fatalf("Reconcile should pass on a clean ledger: %v", err)
	}

	// Corrupt the balance behind the ledger's back.
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("coins_balance", 999).Error; err != nil {
		t.Fatalf("Failed to corrupt balance: %v", err)
	}

	if err := ledger.Reconcile(user.ID); err == nil {
		t.Error("Expected Reconcile to report the mismatch")
	}

	ids, err := ledger.ReconcileAll()
	if err != nil {
		t.Fatalf("ReconcileAll failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != user.ID {
		t.Errorf("Expected [%s] mismatched, got %v", user.ID, ids)
	}
}

func TestLedgerSumCoins(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewSettingsService(db))
	user := createTestUser(t, db, "erin")

	if _, err := ledger.Apply(user.ID, models.TxEarn, 70, decimal.Zero, "task"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := ledger.Apply(user.ID, models.TxBonus, 20, decimal.Zero, "bonus"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := ledger.Apply(user.ID, models.TxWithdraw, -30, decimal.Zero, "withdraw"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	sum, err := ledger.SumCoins(user.ID, models.EarningTypes, time.Time{})
	if err != nil {
		t.Fatalf("SumCoins failed: %v", err)
	}
	if sum != 90 {
		t.Errorf("Expected earning sum 90, got %d", sum)
	}

	sum, err = ledger.SumCoins(user.ID, []models.TransactionType{models.TxReferral}, time.Time{})
	if err != nil {
		t.Fatalf("SumCoins failed: %v", err)
	}
	if sum != 0 {
		t.Errorf("Expected empty-kind sum 0, got %d", sum)
	}
}

func TestLedgerWallet(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsService(db)
	ledger := NewLedgerService(db, settings)
	user := createTestUser(t, db, "frank")

	if _, err := ledger.Apply(user.ID, models.TxEarn, 200, decimal.Zero, "task"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	view, err := ledger.Wallet(user.ID, 10)
	if err != nil {
		t.Fatalf("Wallet failed: %v", err)
	}
	if view.CoinsBalance != 200 {
		t.Errorf("Expected wallet balance 200, got %d", view.CoinsBalance)
	}
	// 200 coins at the default 0.05 rate.
	if !view.ApproxBalanceRs.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected approx balance 10, got %s", view.ApproxBalanceRs)
	}
	if len(view.Transactions) != 1 {
		t.Errorf("Expected 1 transaction in view, got %d", len(view.Transactions))
	}
}
