package handler

import (
	"encoding/json"
	"net/http"

	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"
)

// successEnvelope is the standard success payload shape.
type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// errorEnvelope is the standard failure payload shape.
type errorEnvelope struct {
	Success bool                   `json:"success"`
	Type    apperrors.ErrorType    `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

// respondError maps the error taxonomy onto the response envelope. Errors
// outside the taxonomy are logged and surfaced as a generic internal
// failure, with full detail only in development mode.
func respondError(w http.ResponseWriter, log *logger.Logger, dev bool, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewInternalError("internal server error", err)
	}

	if appErr.Type == apperrors.ErrorTypeInternal {
		log.WithError(err).Error("Request failed")
		if !dev {
			// Never leak internals outside development.
			appErr = apperrors.NewInternalError("internal server error", nil)
		}
	}

	message := appErr.Message
	if dev && appErr.Internal != nil {
		message = appErr.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Success: false,
		Type:    appErr.Type,
		Message: message,
		Details: appErr.Details,
	})
}
