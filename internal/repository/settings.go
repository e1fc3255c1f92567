package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladimiradmaev/fluid-helper/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository handles the key/value settings table
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting returns the stored value and whether the key exists
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var row database.Setting
	err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return row.Value, true, nil
}

// SetSetting inserts or replaces a setting
func (r *SettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	row := database.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
