package service

import (
	"context"
	"strings"
	"time"

	"evote-be/internal/config"
	"evote-be/internal/domain"
	"evote-be/internal/repository"
	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"
	"evote-be/pkg/redis"

	"github.com/google/uuid"
)

// ElectionService is the single gatekeeper for every election write. Each
// create or update is merged, validated, and has its status re-derived
// here before anything is persisted; the only status a caller may set
// directly is the cancellation escape hatch.
type ElectionService struct {
	elections     repository.ElectionRepository
	settings      *SettingsService
	cache         *redis.Client // may be nil
	log           *logger.Logger
	removalPolicy config.CandidateRemovalPolicy
	now           func() time.Time
}

func NewElectionService(
	elections repository.ElectionRepository,
	settings *SettingsService,
	cache *redis.Client,
	log *logger.Logger,
	removalPolicy config.CandidateRemovalPolicy,
) *ElectionService {
	return &ElectionService{
		elections:     elections,
		settings:      settings,
		cache:         cache,
		log:           log,
		removalPolicy: removalPolicy,
		now:           time.Now,
	}
}

// WithClock replaces the time source. Tests use this to pin the status
// derivation to a known instant.
func (s *ElectionService) WithClock(now func() time.Time) *ElectionService {
	s.now = now
	return s
}

// CreateElection validates the input and computes the initial status: a
// fully specified election with at least two candidates launches straight
// into its date-derived state, anything less starts as a draft.
func (s *ElectionService) CreateElection(ctx context.Context, p domain.Principal, req *domain.CreateElectionRequest) (*domain.Election, error) {
	if err := s.checkAdminWrite(p); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}

	e := &domain.Election{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      domain.StatusDraft,
		Candidates:  make([]domain.Candidate, 0, len(req.Candidates)),
		Voters:      []string{},
		Results:     map[string]int{},
		CreatedBy:   p.ID,
	}

	for _, in := range req.Candidates {
		c, err := newCandidate(in)
		if err != nil {
			return nil, err
		}
		e.Candidates = append(e.Candidates, c)
	}

	if err := s.deriveStatus(e, true); err != nil {
		return nil, err
	}

	if err := s.elections.Create(ctx, e); err != nil {
		return nil, apperrors.NewInternalError("failed to create election", err)
	}

	s.invalidateCaches(ctx, e.ID)
	s.log.WithFields(map[string]interface{}{
		"election_id": e.ID,
		"status":      string(e.Status),
		"created_by":  p.ID,
	}).Info("Election created")
	return e, nil
}

// UpdateElection merges the partial input onto the stored election before
// validating, so the guard always judges the would-be-final state. The
// status is re-derived from the clock unless the caller is cancelling.
func (s *ElectionService) UpdateElection(ctx context.Context, p domain.Principal, id string, req *domain.UpdateElectionRequest) (*domain.Election, error) {
	if err := s.checkAdminWrite(p); err != nil {
		return nil, err
	}

	existing, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load election", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("election not found")
	}

	merged := existing.Clone()
	if req.Title != nil {
		merged.Title = strings.TrimSpace(*req.Title)
		if merged.Title == "" {
			return nil, apperrors.NewValidationError("title is required", nil)
		}
	}
	if req.Description != nil {
		merged.Description = strings.TrimSpace(*req.Description)
	}
	if req.StartDate != nil {
		t := *req.StartDate
		merged.StartDate = &t
	}
	if req.EndDate != nil {
		t := *req.EndDate
		merged.EndDate = &t
	}

	if req.Status != nil {
		// Cancellation is the only manual transition; everything else is
		// clock-driven.
		if *req.Status != domain.StatusCancelled {
			return nil, apperrors.NewValidationError("status cannot be set directly", map[string]interface{}{
				"requested": string(*req.Status),
			})
		}
		if existing.Status.Terminal() {
			return nil, apperrors.NewValidationError("invalid status transition", map[string]interface{}{
				"from": string(existing.Status),
				"to":   string(domain.StatusCancelled),
			})
		}
		if err := validateDates(merged); err != nil {
			return nil, err
		}
		merged.Status = domain.StatusCancelled
	} else {
		if err := s.deriveStatus(merged, false); err != nil {
			return nil, err
		}
	}

	if err := s.elections.Update(ctx, merged); err != nil {
		return nil, apperrors.NewInternalError("failed to update election", err)
	}

	s.invalidateCaches(ctx, merged.ID)
	s.log.WithFields(map[string]interface{}{
		"election_id": merged.ID,
		"status":      string(merged.Status),
	}).Info("Election updated")
	return merged, nil
}

// DeleteElection is an unconditional hard delete, intended for pre-launch
// cleanup.
func (s *ElectionService) DeleteElection(ctx context.Context, p domain.Principal, id string) error {
	if err := s.checkAdminWrite(p); err != nil {
		return err
	}

	deleted, err := s.elections.Delete(ctx, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete election", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("election not found")
	}

	s.invalidateCaches(ctx, id)
	s.log.WithField("election_id", id).Info("Election deleted")
	return nil
}

// GetElection returns one election by id.
func (s *ElectionService) GetElection(ctx context.Context, id string) (*domain.Election, error) {
	e, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load election", err)
	}
	if e == nil {
		return nil, apperrors.NewNotFoundError("election not found")
	}
	return e, nil
}

// ListElections returns all elections, newest first.
func (s *ElectionService) ListElections(ctx context.Context) ([]domain.Election, error) {
	elections, err := s.elections.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list elections", err)
	}
	if elections == nil {
		elections = []domain.Election{}
	}
	return elections, nil
}

// AddCandidate appends a candidate while registration is open. Adding a
// candidate can promote a draft that now satisfies the launch requirements.
func (s *ElectionService) AddCandidate(ctx context.Context, p domain.Principal, electionID string, in domain.CandidateInput) (*domain.Election, error) {
	if err := s.checkAdminWrite(p); err != nil {
		return nil, err
	}
	if !s.settings.Current().RegistrationEnabled {
		return nil, apperrors.NewBadRequestError("candidate registration is disabled")
	}

	existing, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load election", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("election not found")
	}
	if existing.Status.Terminal() {
		return nil, apperrors.NewBadRequestError("election is closed")
	}

	c, err := newCandidate(in)
	if err != nil {
		return nil, err
	}

	merged := existing.Clone()
	merged.Candidates = append(merged.Candidates, c)
	if err := s.deriveStatus(merged, false); err != nil {
		return nil, err
	}

	if err := s.elections.Update(ctx, merged); err != nil {
		return nil, apperrors.NewInternalError("failed to update election", err)
	}

	s.invalidateCaches(ctx, merged.ID)
	return merged, nil
}

// UpdateCandidate edits a candidate in place. Empty fields keep their
// stored values.
func (s *ElectionService) UpdateCandidate(ctx context.Context, p domain.Principal, electionID, candidateID string, in domain.CandidateInput) (*domain.Election, error) {
	if err := s.checkAdminWrite(p); err != nil {
		return nil, err
	}

	existing, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load election", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("election not found")
	}

	merged := existing.Clone()
	c, ok := merged.CandidateByID(candidateID)
	if !ok {
		return nil, apperrors.NewNotFoundError("candidate not found")
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if party := strings.TrimSpace(in.Party); party != "" {
		c.Party = party
	}
	if in.Gender != "" {
		if !in.Gender.Valid() {
			return nil, apperrors.NewValidationError("invalid gender", nil)
		}
		c.Gender = in.Gender
	}

	if err := s.deriveStatus(merged, false); err != nil {
		return nil, err
	}
	if err := s.elections.Update(ctx, merged); err != nil {
		return nil, apperrors.NewInternalError("failed to update election", err)
	}

	s.invalidateCaches(ctx, merged.ID)
	return merged, nil
}

// RemoveCandidate deletes a candidate, subject to the removal policy when
// votes are already recorded against it. Dropping a non-draft election
// below two candidates fails validation.
func (s *ElectionService) RemoveCandidate(ctx context.Context, p domain.Principal, electionID, candidateID string) (*domain.Election, error) {
	if err := s.checkAdminWrite(p); err != nil {
		return nil, err
	}

	existing, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load election", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("election not found")
	}
	if _, ok := existing.CandidateByID(candidateID); !ok {
		return nil, apperrors.NewNotFoundError("candidate not found")
	}

	if existing.Results[candidateID] > 0 && s.removalPolicy == config.RemovalPolicyReject {
		return nil, apperrors.NewBadRequestError("candidate has recorded votes")
	}

	merged := existing.Clone()
	kept := merged.Candidates[:0]
	for _, c := range merged.Candidates {
		if c.ID != candidateID {
			kept = append(kept, c)
		}
	}
	merged.Candidates = kept
	if merged.Results[candidateID] == 0 {
		delete(merged.Results, candidateID)
	}

	if err := s.deriveStatus(merged, false); err != nil {
		return nil, err
	}
	if err := s.elections.Update(ctx, merged); err != nil {
		return nil, apperrors.NewInternalError("failed to update election", err)
	}

	s.invalidateCaches(ctx, merged.ID)
	return merged, nil
}

// deriveStatus validates the would-be-final state and overwrites the
// status with the clock-derived value. It never trusts caller input.
func (s *ElectionService) deriveStatus(e *domain.Election, isNew bool) error {
	if err := validateDates(e); err != nil {
		return err
	}

	if !e.ReadyForLaunch() {
		if isNew || e.Status == domain.StatusDraft {
			e.Status = domain.StatusDraft
			return nil
		}
		return apperrors.NewValidationError(
			"a non-draft election requires title, description, both dates, and at least two candidates", nil)
	}

	next, err := domain.NextStatus(e.Status, isNew, s.now(), e.StartDate, e.EndDate)
	if err != nil {
		return err
	}
	e.Status = next
	return nil
}

// checkAdminWrite gates admin-only writes on role and maintenance mode.
func (s *ElectionService) checkAdminWrite(p domain.Principal) error {
	if !p.Role.CanManageElections() {
		return apperrors.NewForbiddenError("admin role required")
	}
	if s.settings.Current().MaintenanceMode && p.Role != domain.RoleSysadmin {
		return apperrors.NewBadRequestError("system is in maintenance mode")
	}
	return nil
}

func (s *ElectionService) invalidateCaches(ctx context.Context, electionID string) {
	if s.cache == nil {
		return
	}
	err := s.cache.Delete(ctx,
		s.cache.KeyBuilder.KeyElectionList(),
		s.cache.KeyBuilder.KeyElectionResults(electionID),
	)
	if err != nil {
		s.log.WithError(err).Warn("Failed to invalidate election caches")
	}
}

func validateDates(e *domain.Election) error {
	if e.StartDate != nil && e.EndDate != nil && !e.StartDate.Before(*e.EndDate) {
		return apperrors.NewValidationError("start date must be before end date", nil)
	}
	return nil
}

func newCandidate(in domain.CandidateInput) (domain.Candidate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Candidate{}, apperrors.NewValidationError("candidate name is required", nil)
	}
	party := strings.TrimSpace(in.Party)
	if party == "" {
		return domain.Candidate{}, apperrors.NewValidationError("candidate party is required", nil)
	}
	if !in.Gender.Valid() {
		return domain.Candidate{}, apperrors.NewValidationError("invalid gender", nil)
	}
	return domain.Candidate{
		ID:     uuid.NewString(),
		Name:   name,
		Party:  party,
		Gender: in.Gender,
	}, nil
}
