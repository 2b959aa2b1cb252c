package services

import (
	"fmt"
	"time"

	"coin-earning-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService is the only mutation path for user coin balances. Every
// balance change is an atomic pair: an expression update on
// users.coins_balance and an insert of an immutable wallet transaction with
// the same delta. Both happen inside one DB transaction, so readers never
// observe a balance that disagrees with the committed ledger.
type LedgerService struct {
	DB       *gorm.DB
	Settings *SettingsService
}

func NewLedgerService(db *gorm.DB, settings *SettingsService) *LedgerService {
	return &LedgerService{DB: db, Settings: settings}
}

// Apply appends a ledger transaction and moves the balance by coins in one
// atomic unit. Negative deltas are guarded against underflow; a debit that
// would push the balance below zero fails with ErrInsufficientBalance and
// leaves no trace.
func (s *LedgerService) Apply(userID string, kind models.TransactionType, coins int64, amountRs decimal.Decimal, note string) (*models.WalletTransaction, error) {
	var rec *models.WalletTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		rec, txErr = s.ApplyTx(tx, userID, kind, coins, amountRs, note)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyTx is Apply scoped to a caller-owned transaction, for operations that
// must pair the ledger append with other writes (withdrawal requests, bonus
// claims, partner receipts).
func (s *LedgerService) ApplyTx(tx *gorm.DB, userID string, kind models.TransactionType, coins int64, amountRs decimal.Decimal, note string) (*models.WalletTransaction, error) {
	// Single-statement balance math: concurrent appends for the same user
	// serialize on the row without a read-modify-write window.
	q := tx.Model(&models.User{}).Where("id = ?", userID)
	if coins < 0 {
		q = q.Where("coins_balance >= ?", -coins)
	}
	res := q.Update("coins_balance", gorm.Expr("coins_balance + ?", coins))
	if res.Error != nil {
		return nil, fmt.Errorf("ledger balance update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("ledger user lookup: %w", err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrInsufficientBalance
	}

	rec := &models.WalletTransaction{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     kind,
		Coins:    coins,
		AmountRs: amountRs,
		Note:     note,
	}
	if err := tx.Create(rec).Error; err != nil {
		// Aborts the surrounding transaction, rolling back the balance
		// update: no transaction row may exist without its balance delta.
		return nil, fmt.Errorf("ledger append: %w", err)
	}
	return rec, nil
}

// WalletView is the user-facing wallet summary.
type WalletView struct {
	CoinsBalance    int64                      `json:"coins_balance"`
	ApproxBalanceRs decimal.Decimal            `json:"approx_balance_rs"`
	CoinToRsRate    decimal.Decimal            `json:"coin_to_rs_rate"`
	Transactions    []models.WalletTransaction `json:"transactions"`
}

// Wallet returns the balance, its currency value at the live rate, and the
// most recent transactions.
func (s *LedgerService) Wallet(userID string, limit int) (*WalletView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var txs []models.WalletTransaction
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error; err != nil {
		return nil, err
	}

	rate := s.Settings.CoinToRsRate()
	return &WalletView{
		CoinsBalance:    user.CoinsBalance,
		ApproxBalanceRs: rate.Mul(decimal.NewFromInt(user.CoinsBalance)).Round(2),
		CoinToRsRate:    rate,
		Transactions:    txs,
	}, nil
}

// SumCoins totals the coin deltas of the given transaction kinds for one
// user since the given time (zero time means all-time).
func (s *LedgerService) SumCoins(userID string, kinds []models.TransactionType, since time.Time) (int64, error) {
	var total *int64
	q := s.DB.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND type IN ?", userID, kinds)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	if err := q.Select("SUM(coins)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// Reconcile verifies the ledger invariant for one user: coins_balance must
// equal the sum of the user's transaction deltas. A mismatch indicates a
// lost or duplicated credit.
func (s *LedgerService) Reconcile(userID string) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	sum, err := s.SumCoins(userID, []models.TransactionType{models.TxEarn, models.TxWithdraw, models.TxBonus, models.TxReferral}, time.Time{})
	if err != nil {
		return err
	}
	if sum != user.CoinsBalance {
		return fmt.Errorf("ledger mismatch for user %s: balance=%d ledger_sum=%d", userID, user.CoinsBalance, sum)
	}
	return nil
}

// ReconcileAll audits every user and returns the ids whose balances diverge
// from their ledgers.
func (s *LedgerService) ReconcileAll() ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.User{}).
		Select("users.id").
		Joins("LEFT JOIN wallet_transactions wt ON wt.user_id = users.id").
		Group("users.id, users.coins_balance").
		Having("users.coins_balance <> COALESCE(SUM(wt.coins), 0)").
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
