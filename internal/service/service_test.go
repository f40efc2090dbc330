package service

import (
	"context"
	"testing"
	"time"

	"evote-be/internal/config"
	"evote-be/internal/domain"
	"evote-be/internal/repository"
	apperrors "evote-be/pkg/errors"
	"evote-be/pkg/logger"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func timePtr(t time.Time) *time.Time { return &t }

var (
	admin = domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}
	sysop = domain.Principal{ID: "sys-1", Role: domain.RoleSysadmin}
	plain = domain.Principal{ID: "user-1", Role: domain.RoleUser}
)

// testEnv wires the services over the in-memory repositories with a
// pinned clock.
type testEnv struct {
	elections *repository.MemoryElectionRepository
	voters    *repository.MemoryVoterRepository
	settings  *SettingsService
	guard     *ElectionService
	ballots   *BallotService
	results   *ResultsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	elections := repository.NewMemoryElectionRepository()
	voters := repository.NewMemoryVoterRepository()
	for _, id := range []string{"v1", "v2", "v3"} {
		voters.Add(domain.Voter{ID: id, Name: id, Email: id + "@example.com", Role: domain.RoleUser})
	}

	log := logger.NewNop()
	settings := NewSettingsService(repository.NewMemorySettingsRepository(), log)
	require.NoError(t, settings.Load(context.Background()))

	guard := NewElectionService(elections, settings, nil, log, config.RemovalPolicyReject).
		WithClock(fixedClock(testNow))
	ballots := NewBallotService(elections, voters, nil, log).WithClock(fixedClock(testNow))
	results := NewResultsService(elections, voters, nil, log)

	return &testEnv{
		elections: elections,
		voters:    voters,
		settings:  settings,
		guard:     guard,
		ballots:   ballots,
		results:   results,
	}
}

// launchRequest is a fully specified election whose window contains
// testNow.
func launchRequest() *domain.CreateElectionRequest {
	return &domain.CreateElectionRequest{
		Title:       "Board Vote",
		Description: "Annual board election",
		StartDate:   timePtr(testNow.Add(-time.Hour)),
		EndDate:     timePtr(testNow.Add(time.Hour)),
		Candidates: []domain.CandidateInput{
			{Name: "Jane Doe", Party: "Growth"},
			{Name: "John Roe", Party: "Stability"},
		},
	}
}

func createActiveElection(t *testing.T, env *testEnv) *domain.Election {
	t.Helper()
	e, err := env.guard.CreateElection(context.Background(), admin, launchRequest())
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, e.Status)
	return e
}

func requireErrType(t *testing.T, err error, want apperrors.ErrorType) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	require.Equal(t, want, appErr.Type, "unexpected error type: %v", err)
	return appErr
}
