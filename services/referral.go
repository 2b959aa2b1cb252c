package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coin-earning-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// One-time signup bonuses, split between referrer and referee.
const (
	ReferrerBonusCoins = 50
	RefereeBonusCoins  = 20
)

// ReferralService creates user records and applies the one-time referral
// bonus. The referrer back-reference is set at most once, at creation, and
// never reassigned.
type ReferralService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewReferralService(db *gorm.DB, ledger *LedgerService) *ReferralService {
	return &ReferralService{DB: db, Ledger: ledger}
}

// Register creates a user, resolves the optional referral code, and pays
// both sides of the referral bonus through the ledger — user row, referrer
// credit, and referee credit commit or roll back together.
func (s *ReferralService) Register(username, email, phone, deviceID, referralCode string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrValidation
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    strings.TrimSpace(email),
		Phone:    strings.TrimSpace(phone),
		DeviceID: deviceID,
		RefCode:  models.NewRefCode(),
	}

	var referrer *models.User
	code := strings.ToUpper(strings.TrimSpace(referralCode))
	if code != "" && code != user.RefCode {
		var found models.User
		err := s.DB.First(&found, "ref_code = ?", code).Error
		switch {
		case err == nil:
			referrer = &found
			user.ReferredByID = &found.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Unknown code: register without a referrer rather than fail.
		default:
			return nil, err
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if referrer == nil {
			return nil
		}
		if _, err := s.Ledger.ApplyTx(tx, referrer.ID, models.TxReferral, ReferrerBonusCoins, decimal.Zero,
			fmt.Sprintf("Referral bonus for inviting %s", user.Username)); err != nil {
			return err
		}
		_, err := s.Ledger.ApplyTx(tx, user.ID, models.TxBonus, RefereeBonusCoins, decimal.Zero,
			"Signup referral bonus")
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ReferredUser is one invited user's progress summary.
type ReferredUser struct {
	Username string    `json:"username"`
	Joined   time.Time `json:"joined"`
	Coins    int64     `json:"coins"`
}

// ReferralAnalytics summarizes a user's referral activity.
type ReferralAnalytics struct {
	MyRefCode     string         `json:"my_ref_code"`
	TotalReferred int64          `json:"total_referred"`
	Users         []ReferredUser `json:"users"`
}

// Analytics returns the reverse index: all users referred by userID, newest
// first.
func (s *ReferralService) Analytics(userID string) (*ReferralAnalytics, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var referred []models.User
	if err := s.DB.Where("referred_by_id = ?", userID).
		Order("created_at DESC").
		Find(&referred).Error; err != nil {
		return nil, err
	}

	out := &ReferralAnalytics{
		MyRefCode:     user.RefCode,
		TotalReferred: int64(len(referred)),
		Users:         make([]ReferredUser, 0, len(referred)),
	}
	for _, r := range referred {
		out.Users = append(out.Users, ReferredUser{
			Username: r.Username,
			Joined:   r.CreatedAt,
			Coins:    r.CoinsBalance,
		})
	}
	return out, nil
}

// Get fetches a user by id.
func (s *ReferralService) Get(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
