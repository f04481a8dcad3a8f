package service

import (
	"context"
	"fmt"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/repo"
)

// SettingsService reads and writes the app-wide preference flags.
type SettingsService struct {
	settings repo.SettingsRepo
}

// NewSettingsService constructs a SettingsService backed by the provided repo.
func NewSettingsService(settings repo.SettingsRepo) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	result, err := s.settings.Get(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service.SettingsService.Get: %w", err)
	}
	return result, nil
}

// Update validates and persists new settings.
// Returns domain.ErrValidation for an unknown map provider.
func (s *SettingsService) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if !settings.MapProvider.Valid() {
		return domain.Settings{}, fmt.Errorf("%w: unknown map provider %q", domain.ErrValidation, settings.MapProvider)
	}
	result, err := s.settings.Update(ctx, settings)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service.SettingsService.Update: %w", err)
	}
	return result, nil
}
