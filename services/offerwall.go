package services

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"

	"coin-earning-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferwallService applies partner reward postbacks to the ledger exactly
// once per partner transaction id. Partners retry postbacks on any
// non-success response, so a replayed id must come back as a successful
// duplicate acknowledgment, never an error.
type OfferwallService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewOfferwallService(db *gorm.DB, ledger *LedgerService) *OfferwallService {
	return &OfferwallService{DB: db, Ledger: ledger}
}

// PostbackResult reports what a postback did.
type PostbackResult struct {
	Duplicate bool  `json:"duplicate,omitempty"`
	Credited  int64 `json:"credited,omitempty"`
	Reversed  int64 `json:"reversed,omitempty"`
}

// CreditCPX records a CPX postback and credits the user at most once per
// trans_id. Status 1 credits, status 2 reverses (clamped at zero, coins are
// never driven negative by a reversal). The receipt insert uses the unique
// index as insert-or-fetch: of two racing postbacks with the same id exactly
// one inserts, the other observes the conflict and is acknowledged as a
// duplicate.
func (s *OfferwallService) CreditCPX(transID, userID, event string, status int, coins int64) (*PostbackResult, error) {
	result := &PostbackResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		rec := models.CPXReceipt{
			ID:          uuid.NewString(),
			TransID:     transID,
			UserID:      userID,
			Event:       event,
			Status:      status,
			AmountLocal: coins,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trans_id"}},
			DoNothing: true,
		}).Create(&rec)
		if res.Error != nil {
			return fmt.Errorf("cpx receipt insert: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Already handled, possibly by a concurrent delivery. The
			// receipt is terminal either way; never re-credit.
			result.Duplicate = true
			return nil
		}

		switch {
		case status == 1 && coins > 0:
			if _, err := s.Ledger.ApplyTx(tx, userID, models.TxEarn, coins, decimal.Zero,
				fmt.Sprintf("CPX %s (trans_id=%s)", event, transID)); err != nil {
				return err
			}
			result.Credited = coins
		case status == 2 && coins > 0:
			// Reversal: deduct without going negative.
			var user models.User
			if err := tx.First(&user, "id = ?", userID).Error; err != nil {
				return err
			}
			deduct := coins
			if deduct > user.CoinsBalance {
				deduct = user.CoinsBalance
			}
			if deduct > 0 {
				if _, err := s.Ledger.ApplyTx(tx, userID, models.TxEarn, -deduct, decimal.Zero,
					fmt.Sprintf("CPX reversal (trans_id=%s)", transID)); err != nil {
					return err
				}
			}
			result.Reversed = deduct
		default:
			// Zero amount or unexpected status: the receipt stays
			// applied=false permanently and still deduplicates replays.
			return nil
		}

		return tx.Model(&models.CPXReceipt{}).
			Where("id = ?", rec.ID).
			Update("applied", true).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreditTapjoy records a Tapjoy postback and credits at most once per
// transaction_id. Same idempotency contract as CreditCPX.
func (s *OfferwallService) CreditTapjoy(transactionID, userID string, coins int64) (*PostbackResult, error) {
	result := &PostbackResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		rec := models.TapjoyReceipt{
			ID:             uuid.NewString(),
			TransactionID:  transactionID,
			UserID:         userID,
			CurrencyAmount: coins,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).Create(&rec)
		if res.Error != nil {
			return fmt.Errorf("tapjoy receipt insert: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			result.Duplicate = true
			return nil
		}

		if coins <= 0 {
			return nil
		}

		if _, err := s.Ledger.ApplyTx(tx, userID, models.TxEarn, coins, decimal.Zero,
			fmt.Sprintf("Tapjoy offerwall (transaction_id=%s)", transactionID)); err != nil {
			return err
		}
		result.Credited = coins

		return tx.Model(&models.TapjoyReceipt{}).
			Where("id = ?", rec.ID).
			Update("applied", true).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// VerifyCPXHash checks the CPX postback hash: md5(ext_user_id + "-" + secret).
func VerifyCPXHash(extUserID, secureHash string) bool {
	secret := strings.TrimSpace(os.Getenv("CPX_SECURITY_HASH"))
	if secret == "" || secureHash == "" {
		return false
	}
	return secureHash == md5Hex(extUserID+"-"+secret)
}

// VerifyTapjoySignature checks the HMAC-SHA256 signature over the raw
// postback payload.
func VerifyTapjoySignature(payload, signature string) bool {
	secret := strings.TrimSpace(os.Getenv("TAPJOY_SECRET_KEY"))
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// BuildCPXWallURL builds the CPX offers iframe URL for a user. ext_user_id
// must be stable and unique per user.
func BuildCPXWallURL(userID string) (string, error) {
	appID := strings.TrimSpace(os.Getenv("CPX_APP_ID"))
	secureHash := strings.TrimSpace(os.Getenv("CPX_SECURITY_HASH"))
	if appID == "" {
		return "", fmt.Errorf("CPX_APP_ID missing")
	}
	if secureHash == "" {
		return "", fmt.Errorf("CPX_SECURITY_HASH missing")
	}

	currency := strings.TrimSpace(os.Getenv("CPX_CURRENCY"))
	if currency == "" {
		currency = "coins"
	}

	params := url.Values{}
	params.Set("app_id", appID)
	params.Set("ext_user_id", userID)
	params.Set("secure_hash", md5Hex(userID+"-"+secureHash))
	params.Set("currency", currency)
	return "https://offers.cpx-research.com/index.php?" + params.Encode(), nil
}

// BuildTapjoyWallURL builds the Tapjoy web offerwall URL for a user.
func BuildTapjoyWallURL(userID string) (string, error) {
	sdkKey := strings.TrimSpace(os.Getenv("TAPJOY_SDK_KEY"))
	if sdkKey == "" {
		return "", fmt.Errorf("TAPJOY_SDK_KEY missing")
	}

	params := url.Values{}
	params.Set("sdk_key", sdkKey)
	params.Set("user_id", userID)
	return "https://www.tapjoy.com/offers?" + params.Encode(), nil
}
