package services

import (
	"errors"
	"log"
	"strconv"

	"coin-earning-system/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsService reads runtime configuration from the app_settings table.
// Values are fetched per call, never cached, so an operator change to e.g.
// the conversion rate applies to the next operation immediately.
type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// Get returns the stored value for key, falling back to the compiled-in
// default when no row exists.
func (s *SettingsService) Get(key string) string {
	var setting models.AppSetting
	err := s.DB.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[SETTINGS] DB error reading %s: %v", key, err)
		}
		return models.SettingDefaults[key]
	}
	return setting.Value
}

func (s *SettingsService) GetInt(key string) int {
	v, err := strconv.Atoi(s.Get(key))
	if err != nil {
		v, _ = strconv.Atoi(models.SettingDefaults[key])
	}
	return v
}

func (s *SettingsService) GetInt64(key string) int64 {
	v, err := strconv.ParseInt(s.Get(key), 10, 64)
	if err != nil {
		v, _ = strconv.ParseInt(models.SettingDefaults[key], 10, 64)
	}
	return v
}

func (s *SettingsService) GetDecimal(key string) decimal.Decimal {
	v, err := decimal.NewFromString(s.Get(key))
	if err != nil {
		v, _ = decimal.NewFromString(models.SettingDefaults[key])
	}
	return v
}

// CoinToRsRate returns the live coin-to-currency conversion rate.
func (s *SettingsService) CoinToRsRate() decimal.Decimal {
	rate := s.GetDecimal(models.SettingCoinToRsRate)
	if rate.Sign() <= 0 {
		rate, _ = decimal.NewFromString(models.SettingDefaults[models.SettingCoinToRsRate])
	}
	return rate
}

// Set upserts a setting value.
func (s *SettingsService) Set(key, value string) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.AppSetting{Key: key, Value: value}).Error
}
