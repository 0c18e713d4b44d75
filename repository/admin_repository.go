package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRepositoryImpl implements AdminRepository interface
type AdminRepositoryImpl struct {
	*BaseRepository[models.Admin]
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &AdminRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Admin](db),
	}
}

// ByUsername retrieves an admin by username
func (r *AdminRepositoryImpl) ByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.getDB(ctx).Where("username = ?", username).Last(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find admin %s: %w", username, err)
	}
	return &admin, nil
}

// Save inserts a new admin
func (r *AdminRepositoryImpl) Save(ctx context.Context, admin *models.Admin) error {
	if admin.UUID == uuid.Nil {
		admin.UUID = uuid.New()
	}
	return r.create(ctx, admin)
}

// UpdatePassword replaces the stored hash of the named admin
func (r *AdminRepositoryImpl) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res := r.getDB(ctx).Model(&models.Admin{}).
		Where("username = ?", username).
		Updates(map[string]any{
			"password_hash":       passwordHash,
			"password_changed_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update admin password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("admin %s not found", username)
	}
	return nil
}

// TouchLastLogin stamps the last successful login
func (r *AdminRepositoryImpl) TouchLastLogin(ctx context.Context, username string) error {
	err := r.getDB(ctx).Model(&models.Admin{}).
		Where("username = ?", username).
		Update("last_login_at", utils.UTCNow()).Error
	if err != nil {
		return fmt.Errorf("failed to update admin last login: %w", err)
	}
	return nil
}
