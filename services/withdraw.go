package services

import (
	"fmt"
	"time"

	"coin-earning-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawService drives the withdrawal request lifecycle:
// pending → approved → paid, or pending → rejected. Coins are escrowed at
// creation by a negative ledger entry; the exact escrowed amount is stored
// on the request and refunded verbatim on rejection.
type WithdrawService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Settings *SettingsService
}

func NewWithdrawService(db *gorm.DB, ledger *LedgerService, settings *SettingsService) *WithdrawService {
	return &WithdrawService{DB: db, Ledger: ledger, Settings: settings}
}

// Create validates the amount, debits coinsNeeded = floor(amount / rate)
// through the ledger, and opens the request in pending — all in one
// transaction. The ledger's balance guard makes a concurrent double-spend
// impossible: of two racing withdrawals only those fitting the balance
// commit.
func (s *WithdrawService) Create(userID string, amountRs decimal.Decimal, method, accountID string) (*models.WithdrawRequest, error) {
	if method == "" || accountID == "" || amountRs.Sign() <= 0 {
		return nil, ErrValidation
	}

	minRs := s.Settings.GetDecimal(models.SettingMinWithdrawRs)
	if amountRs.LessThan(minRs) {
		return nil, fmt.Errorf("%w: minimum is %s", ErrBelowMinimum, minRs)
	}

	rate := s.Settings.CoinToRsRate()
	coinsNeeded := amountRs.Div(rate).IntPart()
	if coinsNeeded <= 0 {
		return nil, ErrValidation
	}

	req := &models.WithdrawRequest{
		ID:           uuid.NewString(),
		UserID:       userID,
		AmountRs:     amountRs,
		Method:       method,
		AccountID:    accountID,
		CoinsDebited: coinsNeeded,
		Status:       models.WithdrawPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.Ledger.ApplyTx(tx, userID, models.TxWithdraw, -coinsNeeded, amountRs,
			fmt.Sprintf("Withdraw request via %s", method)); err != nil {
			return err
		}
		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// transition flips the request's status with a guarded update: the status
// precondition and the write are one atomic statement, so two concurrent
// admin actions against the same request cannot both succeed.
func (s *WithdrawService) transition(tx *gorm.DB, id, action, from, to, adminNote string) (*models.WithdrawRequest, error) {
	updates := map[string]interface{}{
		"status":       to,
		"processed_at": time.Now(),
	}
	if adminNote != "" {
		updates["admin_note"] = adminNote
	}

	res := tx.Model(&models.WithdrawRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("withdrawal %s: %w", action, res.Error)
	}
	if res.RowsAffected == 0 {
		var current models.WithdrawRequest
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return nil, &TransitionError{Action: action, CurrentStatus: current.Status}
	}

	var req models.WithdrawRequest
	if err := tx.First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve moves a pending request to approved. No balance change: the coins
// stay escrowed.
func (s *WithdrawService) Approve(id, adminNote string) (*models.WithdrawRequest, error) {
	return s.transition(s.DB, id, "approve", models.WithdrawPending, models.WithdrawApproved, adminNote)
}

// Reject moves a pending request to rejected and refunds exactly the coins
// escrowed at creation, in one transaction. Refunding coins_debited rather
// than recomputing from the live rate keeps the round trip lossless under
// rate drift.
func (s *WithdrawService) Reject(id, adminNote string) (*models.WithdrawRequest, int64, error) {
	var req *models.WithdrawRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		req, txErr = s.transition(tx, id, "reject", models.WithdrawPending, models.WithdrawRejected, adminNote)
		if txErr != nil {
			return txErr
		}
		_, txErr = s.Ledger.ApplyTx(tx, req.UserID, models.TxWithdraw, req.CoinsDebited, req.AmountRs.Neg(),
			fmt.Sprintf("Withdraw request %s rejected, coins refunded", req.ID))
		return txErr
	})
	if err != nil {
		return nil, 0, err
	}
	return req, req.CoinsDebited, nil
}

// MarkPaid moves an approved request to paid. The escrowed coins were
// debited at creation and are not touched; paid status is advisory, set by
// the operator after the payout happens outside this system.
func (s *WithdrawService) MarkPaid(id, adminNote string) (*models.WithdrawRequest, error) {
	return s.transition(s.DB, id, "mark-paid", models.WithdrawApproved, models.WithdrawPaid, adminNote)
}

// ListForUser returns the user's withdrawal requests, newest first.
func (s *WithdrawService) ListForUser(userID string) ([]models.WithdrawRequest, error) {
	var reqs []models.WithdrawRequest
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// ListAll returns all withdrawal requests for the admin dashboard, with
// optional status and method filters.
func (s *WithdrawService) ListAll(status, method string) ([]models.WithdrawRequest, error) {
	q := s.DB.Preload("User").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if method != "" {
		q = q.Where("method = ?", method)
	}

	var reqs []models.WithdrawRequest
	err := q.Find(&reqs).Error
	return reqs, err
}

// Get fetches one request.
func (s *WithdrawService) Get(id string) (*models.WithdrawRequest, error) {
	var req models.WithdrawRequest
	if err := s.DB.Preload("User").First(&req, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}
