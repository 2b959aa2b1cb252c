package services

import (
	"errors"
	"testing"

	"coin-earning-system/models"

	"github.com/shopspring/decimal"
)

func newWithdrawFixture(t *testing.T) (*WithdrawService, *LedgerService, *models.User) {
	db := setupTestDB(t)
	settings := NewSettingsService(db)
	ledger := NewLedgerService(db, settings)
	service := NewWithdrawService(db, ledger, settings)
	user := createTestUser(t, db, "casher")

	// 2000 coins at the default 0.05 rate is worth 100 Rs.
	if _, err := ledger.Apply(user.ID, models.TxEarn, 2000, decimal.Zero, "seed"); err != nil {
		t.Fatalf("Failed to seed balance: %v", err)
	}
	return service, ledger, user
}

func TestWithdrawCreate_EscrowsCoins(t *testing.T) {
	service, ledger, user := newWithdrawFixture(t)

	req, err := service.Create(user.ID, decimal.NewFromInt(50), "upi", "casher@upi")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if req.Status != models.WithdrawPending {
		t.Errorf("Expected pending status, got %s", req.Status)
	}
	// 50 Rs / 0.05 = 1000 coins.
	if req.CoinsDebited != 1000 {
		t.Errorf("Expected 1000 coins escrowed, got %d", req.CoinsDebited)
	}
	if got := userBalance(t, service.DB, user.ID); got != 1000 {
		t.Errorf("Expected balance 1000 after escrow, got %d", got)
	}
	if err := ledger.Reconcile(user.ID); err != nil {
		t.Errorf("Reconcile failed after escrow: %v", err)
	}
}

func TestWithdrawCreate_BelowMinimum(t *testing.T) {
	service, _, user := newWithdrawFixture(t)

	_, err := service.Create(user.ID, decimal.NewFromInt(10), "upi", "casher@upi")
	if !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("Expected ErrBelowMinimum, got %v", err)
	}
	if got := userBalance(t, service.DB, user.ID); got != 2000 {
		t.Errorf("Expected balance untouched at 2000, got %d", got)
	}
}

func TestWithdrawCreate_InsufficientBalance(t *testing.T) {
	service, _, user := newWithdrawFixture(t)

	// 200 Rs needs 4000 coins, user has 2000. Nothing may change.
	_, err := service.Create(user.ID, decimal.NewFromInt(200), "upi", "casher@upi")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}
	if got := userBalance(t, service.DB, user.ID); got != 2000 {
		t.Errorf("Expected balance untouched at 2000, got %d", got)
	}
	var count int64
	service.DB.Model(&models.WithdrawRequest{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no withdrawal rows, got %d", count)
	}
}

func TestWithdrawCreate_Validation(t *testing.T) {
	service, _, user := newWithdrawFixture(t)

	if _, err := service.Create(user.ID, decimal.NewFromInt(50), "", "acct"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for empty method, got %v", err)
	}
	if _, err := service.Create(user.ID, decimal.NewFromInt(-5), "upi", "acct"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for negative amount, got %v", err)
	}
}

func TestWithdrawReject_RefundsExactEscrow(t *testing.T) {
	service, ledger, user := newWithdrawFixture(t)

	req, err := service.Create(user.ID, decimal.NewFromInt(50), "upi", "casher@upi")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Rate change after escrow must not change the refunded amount.
	if err := service.Settings.Set(models.SettingCoinToRsRate, "0.10"); err != nil {
		t.Fatalf("Failed to change rate: %v", err)
	}

	rejected, refunded, err := service.Reject(req.ID, "account mismatch")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != models.WithdrawRejected {
		t.Errorf("Expected rejected status, got %s", rejected.Status)
	}
	if refunded != 1000 {
		t.Errorf("Expected refund of exactly 1000 coins, got %d", refunded)
	}
	if got := userBalance(t, service.DB, user.ID); got != 2000 {
		t.Errorf("Expected balance restored to 2000, got %d", got)
	}
	if err := ledger.Reconcile(user.ID); err != nil {
		t.Errorf("Reconcile failed after refund: %v", err)
	}
}

func TestWithdrawLifecycle_ApprovePaid(t *testing.T) {
	service, _, user := newWithdrawFixture(t)

	req, err := service.Create(user.ID, decimal.NewFromInt(50), "paypal", "casher@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	approved, err := service.Approve(req.ID, "verified")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != models.WithdrawApproved {
		t.Errorf("Expected approved status, got %s", approved.Status)
	}
	// Approval keeps the escrow: no balance movement.
	if got := userBalance(t, service.DB, user.ID); got != 1000 {
		t.Errorf("Expected balance 1000 after approve, got %d", got)
	}

	paid, err := service.MarkPaid(req.ID, "payout sent")
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if paid.Status != models.WithdrawPaid {
		t.Errorf("Expected paid status, got %s", paid.Status)
	}
	if got := userBalance(t, service.DB, user.ID); got != 1000 {
		t.Errorf("Expected balance 1000 after payout, got %d", got)
	}
}

func TestWithdrawTransitions_RejectInvalid(t *testing.T) {
	service, _, user := newWithdrawFixture(t)

	req, err := service.Create(user.ID, decimal.NewFromInt(50), "upi", "casher@upi")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// MarkPaid requires approved, not pending.
	if _, err := service.MarkPaid(req.ID, ""); !IsConflict(err) {
		t.Errorf("Expected transition conflict for mark-paid on pending, got %v", err)
	}

	if _, err := service.Approve(req.ID, ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// A second approve and a late reject must both conflict, without refunds.
	if _, err := service.Approve(req.ID, ""); !IsConflict(err) {
		t.Errorf("Expected conflict on double approve, got %v", err)
	}
	if _, _, err := service.Reject(req.ID, ""); !IsConflict(err) {
		t.Errorf("Expected conflict on reject after approve, got %v", err)
	}
	if got := userBalance(t, service.DB, user.ID); got != 1000 {
		t.Errorf("Expected balance unchanged at 1000, got %d", got)
	}

	if _, err := service.Approve("missing-id", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown request, got %v", err)
	}
}

func TestWithdrawListAll_Filters(t *testing.T) {
	service, _, user := newWithdrawFixture(t)

	if _, err := service.Create(user.ID, decimal.NewFromInt(50), "upi", "a"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	req2, err := service.Create(user.ID, decimal.NewFromInt(50), "paypal", "b")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := service.Approve(req2.ID, ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	pending, err := service.ListAll(models.WithdrawPending, "")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("Expected 1 pending request, got %d", len(pending))
	}

	paypal, err := service.ListAll("", "paypal")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(paypal) != 1 || paypal[0].Method != "paypal" {
		t.Errorf("Expected 1 paypal request, got %+v", paypal)
	}
}
