package service

import (
	"context"
	"encoding/json"

	"evote-be/internal/domain"
	"evote-be/internal/repository"
	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"
	"evote-be/pkg/redis"
)

// ResultsService serves the public results board. The projection itself is
// the pure function in the domain package; this layer adds the registered
// voter count and a short-lived cache in front of it.
type ResultsService struct {
	elections repository.ElectionRepository
	voters    repository.VoterRepository
	cache     *redis.Client // may be nil
	log       *logger.Logger
}

func NewResultsService(
	elections repository.ElectionRepository,
	voters repository.VoterRepository,
	cache *redis.Client,
	log *logger.Logger,
) *ResultsService {
	return &ResultsService{
		elections: elections,
		voters:    voters,
		cache:     cache,
		log:       log,
	}
}

// GetResults returns the ranked results board for one election. Visibility
// gating happens inside the projection: draft, upcoming, and cancelled
// elections never expose tallies.
func (s *ResultsService) GetResults(ctx context.Context, electionID string) (*domain.ElectionResults, error) {
	if cached := s.fromCache(ctx, electionID); cached != nil {
		return cached, nil
	}

	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load election", err)
	}
	if election == nil {
		return nil, apperrors.NewNotFoundError("election not found")
	}

	totalVoters, err := s.voters.Count(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count voters", err)
	}

	results, err := domain.ProjectResults(election, totalVoters)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, electionID, results)
	return results, nil
}

func (s *ResultsService) fromCache(ctx context.Context, electionID string) *domain.ElectionResults {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.KeyBuilder.KeyElectionResults(electionID))
	if err != nil || raw == "" {
		return nil
	}
	var results domain.ElectionResults
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		s.log.WithError(err).Warn("Discarding malformed cached results")
		return nil
	}
	return &results
}

func (s *ResultsService) toCache(ctx context.Context, electionID string, results *domain.ElectionResults) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	key := s.cache.KeyBuilder.KeyElectionResults(electionID)
	if err := s.cache.Set(ctx, key, string(raw), redis.TTLResults); err != nil {
		s.log.WithError(err).Warn("Failed to cache results")
	}
}
