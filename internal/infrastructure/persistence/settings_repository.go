package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/stocklink/backend/internal/domain/catalog"
)

// GormSettingsRepository implements SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the settings row, creating the default row if absent
func (r *GormSettingsRepository) Get(ctx context.Context) (*catalog.Settings, error) {
	var settings catalog.Settings
	err := r.db.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = catalog.Settings{SalesLookbackDay: catalog.DefaultSalesLookbackDays}
		if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update persists the settings row
func (r *GormSettingsRepository) Update(ctx context.Context, settings *catalog.Settings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

// Ensure GormSettingsRepository implements SettingsRepository
var _ catalog.SettingsRepository = (*GormSettingsRepository)(nil)
