package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"evote-be/internal/domain"
	"evote-be/internal/middleware"
	"evote-be/internal/service"
	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// BallotHandler exposes vote casting and the public results board.
type BallotHandler struct {
	ballots *service.BallotService
	results *service.ResultsService
	log     *logger.Logger
	dev     bool
}

func NewBallotHandler(ballots *service.BallotService, results *service.ResultsService, log *logger.Logger, dev bool) *BallotHandler {
	return &BallotHandler{ballots: ballots, results: results, log: log, dev: dev}
}

// CastVote handles POST /api/voters/election/{electionId}
func (h *BallotHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, h.log, h.dev, apperrors.NewAuthenticationError("authentication required"))
		return
	}

	var req domain.BallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, h.dev, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.CandidateID) == "" {
		respondError(w, h.log, h.dev, apperrors.NewValidationError("candidate_id is required", nil))
		return
	}

	receipt, err := h.ballots.CastVote(r.Context(), chi.URLParam(r, "electionId"), principal.ID, req.CandidateID)
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}

// GetResults handles GET /api/voters/election/{electionId}/results
func (h *BallotHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.results.GetResults(r.Context(), chi.URLParam(r, "electionId"))
	if err != nil {
		respondError(w, h.log, h.dev, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
