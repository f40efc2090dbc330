package repository

import (
	"context"
	"errors"
	"time"

	"evote-be/internal/domain"
)

// ErrAlreadyVoted is returned by CastVote when the conditional update found
// the voter already present in the ledger.
var ErrAlreadyVoted = errors.New("voter already present in ledger")

// VoteCount carries the tallies returned by the atomic cast-vote update.
type VoteCount struct {
	CandidateVotes int
	TotalVoted     int
}

// ReconcileStats summarizes one pass of the batch status sweep.
type ReconcileStats struct {
	Activated int // upcoming -> active
	Completed int // active -> completed
	Expired   int // draft/upcoming -> completed past end date
}

// Total returns the number of rows touched by the pass.
func (s ReconcileStats) Total() int {
	return s.Activated + s.Completed + s.Expired
}

// ElectionRepository is the persistence boundary for elections. GetByID
// returns (nil, nil) when the id is unknown.
type ElectionRepository interface {
	Create(ctx context.Context, e *domain.Election) error
	GetByID(ctx context.Context, id string) (*domain.Election, error)
	List(ctx context.Context) ([]domain.Election, error)
	Update(ctx context.Context, e *domain.Election) error
	Delete(ctx context.Context, id string) (bool, error)

	// CastVote appends the voter, bumps the total, and increments the
	// candidate tally as one atomic conditional update. It returns
	// ErrAlreadyVoted when the voter is already in the ledger and
	// (nil, nil) when the election does not exist. Two concurrent calls
	// for the same (election, voter) pair must never both succeed.
	CastVote(ctx context.Context, electionID, voterID, candidateID string) (*VoteCount, error)

	// ReconcileStatuses advances stale statuses in bulk: active past end
	// to completed, upcoming inside the window to active, and
	// draft/upcoming past end straight to completed.
	ReconcileStatuses(ctx context.Context, now time.Time) (ReconcileStats, error)
}

// VoterRepository is the voter identity boundary.
type VoterRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// SettingsRepository persists the singleton settings row.
type SettingsRepository interface {
	LoadOrCreate(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, s *domain.Settings) error
}
