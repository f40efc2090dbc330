package service

import (
	"context"
	"sync"

	"evote-be/internal/domain"
	"evote-be/internal/repository"
	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"
)

// SettingsService owns the system-wide settings singleton. It is loaded
// (or created with defaults) once at process start and injected into the
// services that consult it, so no code path depends on a lazily created
// global.
type SettingsService struct {
	repo repository.SettingsRepository
	log  *logger.Logger

	mu      sync.RWMutex
	current domain.Settings
}

func NewSettingsService(repo repository.SettingsRepository, log *logger.Logger) *SettingsService {
	return &SettingsService{repo: repo, log: log}
}

// Load fetches the singleton row, creating it with defaults on first run.
func (s *SettingsService) Load(ctx context.Context) error {
	settings, err := s.repo.LoadOrCreate(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = *settings
	s.mu.Unlock()

	s.log.WithFields(map[string]interface{}{
		"maintenance_mode":     settings.MaintenanceMode,
		"registration_enabled": settings.RegistrationEnabled,
	}).Info("Settings loaded")
	return nil
}

// Current returns a copy of the loaded settings.
func (s *SettingsService) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies a partial settings change. Only sysadmins may flip these
// switches.
func (s *SettingsService) Update(ctx context.Context, p domain.Principal, req *domain.UpdateSettingsRequest) (domain.Settings, error) {
	if p.Role != domain.RoleSysadmin {
		return domain.Settings{}, apperrors.NewForbiddenError("sysadmin role required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if req.MaintenanceMode != nil {
		next.MaintenanceMode = *req.MaintenanceMode
	}
	if req.RegistrationEnabled != nil {
		next.RegistrationEnabled = *req.RegistrationEnabled
	}

	if err := s.repo.Update(ctx, &next); err != nil {
		return domain.Settings{}, apperrors.NewInternalError("failed to update settings", err)
	}

	s.current = next
	s.log.WithFields(map[string]interface{}{
		"maintenance_mode":     next.MaintenanceMode,
		"registration_enabled": next.RegistrationEnabled,
		"updated_by":           p.ID,
	}).Info("Settings updated")
	return next, nil
}
