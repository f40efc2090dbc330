package service

import (
	"context"
	"time"

	"evote-be/internal/domain"
	"evote-be/internal/repository"
	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"
	"evote-be/pkg/redis"

	"github.com/google/uuid"
)

// BallotService is the vote ledger: it accepts a ballot, enforces
// exactly-once semantics per voter, and returns the updated tally. The
// authoritative duplicate guard lives in the repository's conditional
// update; Redis only short-circuits obvious repeats.
type BallotService struct {
	elections repository.ElectionRepository
	voters    repository.VoterRepository
	cache     *redis.Client // may be nil
	log       *logger.Logger
	now       func() time.Time
}

func NewBallotService(
	elections repository.ElectionRepository,
	voters repository.VoterRepository,
	cache *redis.Client,
	log *logger.Logger,
) *BallotService {
	return &BallotService{
		elections: elections,
		voters:    voters,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the time source for tests.
func (s *BallotService) WithClock(now func() time.Time) *BallotService {
	s.now = now
	return s
}

// CastVote records one ballot. The date window is checked against the
// clock rather than the cached status field, so a stale status can never
// admit a vote outside the window. A retried request after a transient
// failure either succeeds once or reports "already voted".
func (s *BallotService) CastVote(ctx context.Context, electionID, voterID, candidateID string) (*domain.BallotReceipt, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load election", err)
	}
	if election == nil {
		return nil, apperrors.NewNotFoundError("election not found")
	}

	now := s.now()
	if election.Status == domain.StatusCancelled || !election.WindowContains(now) {
		return nil, apperrors.NewBadRequestError("election is not active")
	}

	exists, err := s.voters.Exists(ctx, voterID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check voter", err)
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("voter not found")
	}

	// Advisory pre-check; the conditional update below is what actually
	// prevents the double vote.
	if election.HasVoted(voterID) {
		return nil, apperrors.NewBadRequestError("already voted")
	}

	if _, ok := election.CandidateByID(candidateID); !ok {
		return nil, apperrors.NewNotFoundError("candidate not found")
	}

	guardKey, guardHeld := s.tryVoterGuard(ctx, electionID, voterID)
	if !guardHeld {
		return nil, apperrors.NewBadRequestError("already voted")
	}

	count, err := s.elections.CastVote(ctx, electionID, voterID, candidateID)
	if err == repository.ErrAlreadyVoted {
		return nil, apperrors.NewBadRequestError("already voted")
	}
	if err != nil {
		// Release the fast-path guard so the voter can retry after a
		// transient failure.
		s.releaseVoterGuard(ctx, guardKey)
		return nil, apperrors.NewInternalError("failed to record vote", err)
	}
	if count == nil {
		s.releaseVoterGuard(ctx, guardKey)
		return nil, apperrors.NewNotFoundError("election not found")
	}

	s.invalidateResults(ctx, electionID)
	s.log.WithFields(map[string]interface{}{
		"election_id": electionID,
		"total_voted": count.TotalVoted,
	}).Info("Ballot accepted")

	return &domain.BallotReceipt{
		ReceiptID:      uuid.NewString(),
		ElectionID:     electionID,
		CandidateID:    candidateID,
		CandidateVotes: count.CandidateVotes,
		TotalVoted:     count.TotalVoted,
		CastAt:         now.UTC(),
	}, nil
}

// tryVoterGuard acquires the Redis fast-path guard. It reports held=true
// when Redis is unavailable: the guard is an optimization, never the
// authority.
func (s *BallotService) tryVoterGuard(ctx context.Context, electionID, voterID string) (key string, held bool) {
	if s.cache == nil {
		return "", true
	}
	key = s.cache.KeyBuilder.KeyVoterGuard(electionID, voterID)
	ok, err := s.cache.SetNX(ctx, key, "1", redis.TTLVoterGuard)
	if err != nil {
		s.log.WithError(err).Warn("Voter guard unavailable, falling through to database")
		return key, true
	}
	return key, ok
}

func (s *BallotService) releaseVoterGuard(ctx context.Context, key string) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WithError(err).Warn("Failed to release voter guard")
	}
}

func (s *BallotService) invalidateResults(ctx context.Context, electionID string) {
	if s.cache == nil {
		return
	}
	err := s.cache.Delete(ctx,
		s.cache.KeyBuilder.KeyElectionResults(electionID),
		s.cache.KeyBuilder.KeyElectionList(),
	)
	if err != nil {
		s.log.WithError(err).Warn("Failed to invalidate results cache")
	}
}
