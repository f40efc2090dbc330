package repository

import (
	"context"
	"fmt"

	"evote-be/internal/domain"
	"evote-be/pkg/database"
)

// PostgresSettingsRepository persists the singleton settings row. The
// table is keyed by a constant so at most one row can ever exist.
type PostgresSettingsRepository struct {
	db *database.PostgresDB
}

func NewPostgresSettingsRepository(db *database.PostgresDB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) LoadOrCreate(ctx context.Context) (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO settings (id, maintenance_mode, registration_enabled)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING`,
		defaults.MaintenanceMode, defaults.RegistrationEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	var s domain.Settings
	err = r.db.Pool.QueryRow(ctx, `
		SELECT maintenance_mode, registration_enabled, updated_at
		FROM settings WHERE id = 1`).
		Scan(&s.MaintenanceMode, &s.RegistrationEnabled, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &s, nil
}

func (r *PostgresSettingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE settings
		SET maintenance_mode = $1, registration_enabled = $2, updated_at = now()
		WHERE id = 1
		RETURNING updated_at`,
		s.MaintenanceMode, s.RegistrationEnabled).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
