package repository

import (
	"context"
	"sync"
	"time"

	"evote-be/internal/domain"
)

// MemoryElectionRepository is an in-memory ElectionRepository used when no
// DATABASE_URL is configured (local development) and throughout the test
// suite. It honors the same contract as the Postgres implementation: the
// duplicate-vote guard and the tally writes happen under one lock, never
// as a separate check-then-write.
type MemoryElectionRepository struct {
	mu        sync.Mutex
	elections map[string]*domain.Election
}

func NewMemoryElectionRepository() *MemoryElectionRepository {
	return &MemoryElectionRepository{elections: make(map[string]*domain.Election)}
}

func (r *MemoryElectionRepository) Create(_ context.Context, e *domain.Election) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.elections[e.ID] = e.Clone()
	return nil
}

func (r *MemoryElectionRepository) GetByID(_ context.Context, id string) (*domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.elections[id]
	if !ok {
		return nil, nil
	}
	return e.Clone(), nil
}

func (r *MemoryElectionRepository) List(_ context.Context) ([]domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Election, 0, len(r.elections))
	for _, e := range r.elections {
		out = append(out, *e.Clone())
	}
	return out, nil
}

func (r *MemoryElectionRepository) Update(_ context.Context, e *domain.Election) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.UpdatedAt = time.Now().UTC()
	r.elections[e.ID] = e.Clone()
	return nil
}

func (r *MemoryElectionRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.elections[id]; !ok {
		return false, nil
	}
	delete(r.elections, id)
	return true, nil
}

func (r *MemoryElectionRepository) CastVote(_ context.Context, electionID, voterID, candidateID string) (*VoteCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.elections[electionID]
	if !ok {
		return nil, nil
	}
	if e.HasVoted(voterID) {
		return nil, ErrAlreadyVoted
	}

	e.Voters = append(e.Voters, voterID)
	e.Voted++
	if e.Results == nil {
		e.Results = map[string]int{}
	}
	e.Results[candidateID]++
	e.UpdatedAt = time.Now().UTC()

	return &VoteCount{CandidateVotes: e.Results[candidateID], TotalVoted: e.Voted}, nil
}

func (r *MemoryElectionRepository) ReconcileStatuses(_ context.Context, now time.Time) (ReconcileStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats ReconcileStats
	for _, e := range r.elections {
		switch {
		case e.Status == domain.StatusActive && e.EndDate != nil && e.EndDate.Before(now):
			e.Status = domain.StatusCompleted
			stats.Completed++
		case (e.Status == domain.StatusDraft || e.Status == domain.StatusUpcoming) &&
			e.EndDate != nil && e.EndDate.Before(now):
			e.Status = domain.StatusCompleted
			stats.Expired++
		case e.Status == domain.StatusUpcoming && e.WindowContains(now):
			e.Status = domain.StatusActive
			stats.Activated++
		}
	}
	return stats, nil
}

// MemoryVoterRepository is the in-memory voter identity store.
type MemoryVoterRepository struct {
	mu     sync.RWMutex
	voters map[string]domain.Voter
}

func NewMemoryVoterRepository() *MemoryVoterRepository {
	return &MemoryVoterRepository{voters: make(map[string]domain.Voter)}
}

// Add registers a voter. Used by tests and local-development seeding.
func (r *MemoryVoterRepository) Add(v domain.Voter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voters[v.ID] = v
}

func (r *MemoryVoterRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.voters[id]
	return ok, nil
}

func (r *MemoryVoterRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.voters), nil
}

// MemorySettingsRepository keeps the singleton settings row in memory.
type MemorySettingsRepository struct {
	mu       sync.Mutex
	settings *domain.Settings
}

func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{}
}

func (r *MemorySettingsRepository) LoadOrCreate(_ context.Context) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings == nil {
		s := domain.DefaultSettings()
		s.UpdatedAt = time.Now().UTC()
		r.settings = &s
	}
	dup := *r.settings
	return &dup, nil
}

func (r *MemorySettingsRepository) Update(_ context.Context, s *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.UpdatedAt = time.Now().UTC()
	dup := *s
	r.settings = &dup
	return nil
}
