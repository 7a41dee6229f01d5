package catalog

import (
	"context"

	"github.com/stocklink/backend/internal/domain/catalog"
)

// SettingsService handles the single-row application settings
type SettingsService struct {
	settingsRepo catalog.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo catalog.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// Get returns the current settings, creating the default row on first use
func (s *SettingsService) Get(ctx context.Context) (*SettingsResponse, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	response := ToSettingsResponse(settings)
	return &response, nil
}

// Update replaces the settings with the submitted values
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*SettingsResponse, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.Store1 = toCredential(req.Store1)
	settings.Store2 = toCredential(req.Store2)
	settings.Store3 = toCredential(req.Store3)
	settings.Store4 = toCredential(req.Store4)
	settings.Store5 = toCredential(req.Store5)
	settings.Store6 = toCredential(req.Store6)
	settings.ExcludedSKUs = req.ExcludedSKUs
	settings.SalesOrderTag = req.SalesOrderTag
	if req.SalesLookbackDay > 0 {
		settings.SalesLookbackDay = req.SalesLookbackDay
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	response := ToSettingsResponse(settings)
	return &response, nil
}
