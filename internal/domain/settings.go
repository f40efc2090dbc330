package domain

import "time"

// Settings is the system-wide singleton: at most one row exists and it is
// created with defaults the first time the service loads it.
type Settings struct {
	MaintenanceMode     bool      `json:"maintenance_mode"`
	RegistrationEnabled bool      `json:"registration_enabled"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultSettings returns the values used when no settings row exists yet.
func DefaultSettings() Settings {
	return Settings{
		MaintenanceMode:     false,
		RegistrationEnabled: true,
	}
}

// UpdateSettingsRequest is the body of PATCH /api/settings. Nil fields are
// left untouched.
type UpdateSettingsRequest struct {
	MaintenanceMode     *bool `json:"maintenance_mode,omitempty"`
	RegistrationEnabled *bool `json:"registration_enabled,omitempty"`
}
