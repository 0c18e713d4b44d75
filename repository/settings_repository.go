package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/personnel-directory/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepositoryImpl implements SettingsRepository on postgres
type SettingsRepositoryImpl struct {
	*BaseRepository[models.AppSettings]
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &SettingsRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AppSettings](db),
	}
}

// Load returns the stored settings, or (nil, nil) before the first save
func (r *SettingsRepositoryImpl) Load(ctx context.Context) (*models.AppSettings, error) {
	var settings models.AppSettings
	err := r.getDB(ctx).Where("key = ?", models.AppSettingsKey).Take(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load app settings: %w", err)
	}
	return &settings, nil
}

// Save upserts the settings row
func (r *SettingsRepositoryImpl) Save(ctx context.Context, settings *models.AppSettings) error {
	row := *settings
	row.ID = 0
	row.Key = models.AppSettingsKey
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"company_name", "app_title", "logo_url", "favicon_url", "theme_color", "designer_credit", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save app settings: %w", err)
	}
	return nil
}
