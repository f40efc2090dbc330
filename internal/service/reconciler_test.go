package service

import (
	"context"
	"testing"
	"time"

	"evote-be/internal/domain"
	"evote-be/internal/repository"
	"evote-be/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedElection(t *testing.T, repo *repository.MemoryElectionRepository, status domain.Status, start, end *time.Time) *domain.Election {
	t.Helper()
	e := &domain.Election{
		ID:          "rec-" + string(status),
		Title:       "Board Vote",
		Description: "Annual board election",
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		Candidates: []domain.Candidate{
			{ID: "c1", Name: "Jane Doe", Party: "Growth"},
			{ID: "c2", Name: "John Roe", Party: "Stability"},
		},
		Voters:  []string{},
		Results: map[string]int{},
	}
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestRunOnce_ActivatesUpcoming(t *testing.T) {
	repo := repository.NewMemoryElectionRepository()
	e := seedElection(t, repo, domain.StatusUpcoming,
		timePtr(testNow.Add(-time.Hour)), timePtr(testNow.Add(time.Hour)))

	rec := NewReconciler(repo, logger.NewNop(), time.Minute).WithClock(fixedClock(testNow))
	stats, err := rec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Activated)

	stored, err := repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
}

func TestRunOnce_CompletesActive(t *testing.T) {
	repo := repository.NewMemoryElectionRepository()
	e := seedElection(t, repo, domain.StatusActive,
		timePtr(testNow.Add(-2*time.Hour)), timePtr(testNow.Add(-time.Hour)))

	rec := NewReconciler(repo, logger.NewNop(), time.Minute).WithClock(fixedClock(testNow))
	stats, err := rec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Completed)

	stored, err := repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

// An election whose whole window elapsed while it sat upcoming skips the
// active state entirely; only the batch sweep may do that.
func TestRunOnce_ExpiresUpcomingPastWindow(t *testing.T) {
	repo := repository.NewMemoryElectionRepository()
	e := seedElection(t, repo, domain.StatusUpcoming,
		timePtr(testNow.Add(-2*time.Hour)), timePtr(testNow.Add(-time.Hour)))

	rec := NewReconciler(repo, logger.NewNop(), time.Minute).WithClock(fixedClock(testNow))
	stats, err := rec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Expired)

	stored, err := repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestRunOnce_LeavesCancelledAndDraftAlone(t *testing.T) {
	repo := repository.NewMemoryElectionRepository()

	cancelled := seedElection(t, repo, domain.StatusCancelled,
		timePtr(testNow.Add(-time.Hour)), timePtr(testNow.Add(time.Hour)))

	draft := &domain.Election{
		ID:      "rec-plain-draft",
		Title:   "Board Vote",
		Status:  domain.StatusDraft,
		Voters:  []string{},
		Results: map[string]int{},
	}
	require.NoError(t, repo.Create(context.Background(), draft))

	rec := NewReconciler(repo, logger.NewNop(), time.Minute).WithClock(fixedClock(testNow))
	stats, err := rec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total())

	stored, err := repo.GetByID(context.Background(), cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	stored, err = repo.GetByID(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, stored.Status)
}

func TestRunOnce_Idempotent(t *testing.T) {
	repo := repository.NewMemoryElectionRepository()
	seedElection(t, repo, domain.StatusUpcoming,
		timePtr(testNow.Add(-time.Hour)), timePtr(testNow.Add(time.Hour)))

	rec := NewReconciler(repo, logger.NewNop(), time.Minute).WithClock(fixedClock(testNow))

	stats, err := rec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total())

	stats, err = rec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total())
}

func TestReconciler_StartStop(t *testing.T) {
	repo := repository.NewMemoryElectionRepository()
	rec := NewReconciler(repo, logger.NewNop(), 10*time.Millisecond).WithClock(fixedClock(testNow))

	require.NoError(t, rec.Start(context.Background()))
	assert.Error(t, rec.Start(context.Background()), "double start must fail")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, rec.Stop(ctx))
}
