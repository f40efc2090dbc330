package handler

import (
	"encoding/json"
	"net/http"

	"evote-be/internal/domain"
	"evote-be/internal/middleware"
	"evote-be/internal/service"
	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// ElectionHandler exposes the admin election surface.
type ElectionHandler struct {
	elections *service.ElectionService
	log       *logger.Logger
	dev       bool
}

func NewElectionHandler(elections *service.ElectionService, log *logger.Logger, dev bool) *ElectionHandler {
	return &ElectionHandler{elections: elections, log: log, dev: dev}
}

// Create handles POST /api/elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, h.log, h.dev, apperrors.NewAuthenticationError("authentication required"))
		return
	}

	var req domain.CreateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, h.dev, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	election, err := h.elections.CreateElection(r.Context(), principal, &req)
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusCreated, election)
}

// List handles GET /api/elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	elections, err := h.elections.ListElections(r.Context())
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusOK, elections)
}

// Get handles GET /api/elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	election, err := h.elections.GetElection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusOK, election)
}

// Update handles PATCH /api/elections/{id}
func (h *ElectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, h.log, h.dev, apperrors.NewAuthenticationError("authentication required"))
		return
	}

	var req domain.UpdateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, h.dev, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	election, err := h.elections.UpdateElection(r.Context(), principal, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusOK, election)
}

// Delete handles DELETE /api/elections/{id}
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, h.log, h.dev, apperrors.NewAuthenticationError("authentication required"))
		return
	}

	if err := h.elections.DeleteElection(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "election deleted"})
}

// AddCandidate handles POST /api/elections/{id}/candidates
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, h.log, h.dev, apperrors.NewAuthenticationError("authentication required"))
		return
	}

	var in domain.CandidateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, h.log, h.dev, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	election, err := h.elections.AddCandidate(r.Context(), principal, chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusCreated, election)
}

// UpdateCandidate handles PATCH /api/elections/{id}/candidates/{candidateId}
func (h *ElectionHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, h.log, h.dev, apperrors.NewAuthenticationError("authentication required"))
		return
	}

	var in domain.CandidateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, h.log, h.dev, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	election, err := h.elections.UpdateCandidate(r.Context(), principal,
		chi.URLParam(r, "id"), chi.URLParam(r, "candidateId"), in)
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusOK, election)
}

// RemoveCandidate handles DELETE /api/elections/{id}/candidates/{candidateId}
func (h *ElectionHandler) RemoveCandidate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, h.log, h.dev, apperrors.NewAuthenticationError("authentication required"))
		return
	}

	election, err := h.elections.RemoveCandidate(r.Context(), principal,
		chi.URLParam(r, "id"), chi.URLParam(r, "candidateId"))
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusOK, election)
}
