package handler

import (
	"encoding/json"
	"net/http"

	"evote-be/internal/domain"
	"evote-be/internal/middleware"
	"evote-be/internal/service"
	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"
)

// SettingsHandler exposes the system settings singleton.
type SettingsHandler struct {
	settings *service.SettingsService
	log      *logger.Logger
	dev      bool
}

func NewSettingsHandler(settings *service.SettingsService, log *logger.Logger, dev bool) *SettingsHandler {
	return &SettingsHandler{settings: settings, log: log, dev: dev}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.settings.Current())
}

// Update handles PATCH /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, h.log, h.dev, apperrors.NewAuthenticationError("authentication required"))
		return
	}

	var req domain.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, h.dev, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	settings, err := h.settings.Update(r.Context(), principal, &req)
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
