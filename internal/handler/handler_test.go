package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evote-be/internal/config"
	"evote-be/internal/domain"
	"evote-be/internal/middleware"
	"evote-be/internal/repository"
	"evote-be/internal/service"
	"evote-be/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	adminPrincipal = domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}
	sysopPrincipal = domain.Principal{ID: "sys-1", Role: domain.RoleSysadmin}
	voterPrincipal = domain.Principal{ID: "v1", Role: domain.RoleUser}
)

// testServer mounts the handlers on the same route tree the real server
// uses, with authentication replaced by a principal injected per request.
type testServer struct {
	router   chi.Router
	guard    *service.ElectionService
	ballots  *service.BallotService
	settings *service.SettingsService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := func() time.Time { return testNow }

	elections := repository.NewMemoryElectionRepository()
	voters := repository.NewMemoryVoterRepository()
	for _, id := range []string{"v1", "v2", "v3"} {
		voters.Add(domain.Voter{ID: id, Name: id, Email: id + "@example.com", Role: domain.RoleUser})
	}

	log := logger.NewNop()
	settings := service.NewSettingsService(repository.NewMemorySettingsRepository(), log)
	require.NoError(t, settings.Load(context.Background()))

	guard := service.NewElectionService(elections, settings, nil, log, config.RemovalPolicyReject).
		WithClock(clock)
	ballots := service.NewBallotService(elections, voters, nil, log).WithClock(clock)
	results := service.NewResultsService(elections, voters, nil, log)

	electionHandler := NewElectionHandler(guard, log, false)
	ballotHandler := NewBallotHandler(ballots, results, log, false)
	settingsHandler := NewSettingsHandler(settings, log, false)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/elections", electionHandler.List)
		r.Get("/elections/{id}", electionHandler.Get)
		r.Get("/voters/election/{electionId}/results", ballotHandler.GetResults)

		r.Post("/voters/election/{electionId}", ballotHandler.CastVote)

		r.Post("/elections", electionHandler.Create)
		r.Patch("/elections/{id}", electionHandler.Update)
		r.Delete("/elections/{id}", electionHandler.Delete)
		r.Post("/elections/{id}/candidates", electionHandler.AddCandidate)
		r.Patch("/elections/{id}/candidates/{candidateId}", electionHandler.UpdateCandidate)
		r.Delete("/elections/{id}/candidates/{candidateId}", electionHandler.RemoveCandidate)

		r.Get("/settings", settingsHandler.Get)
		r.Patch("/settings", settingsHandler.Update)
	})

	return &testServer{router: r, guard: guard, ballots: ballots, settings: settings}
}

// do performs a request with an optional authenticated principal.
func (s *testServer) do(t *testing.T, method, path string, principal *domain.Principal, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if principal != nil {
		ctx := context.WithValue(req.Context(), middleware.PrincipalContextKey, *principal)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded response wrapper.
type envelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, "expected a success envelope, got: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func fullElectionBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Board Vote",
		"description": "Annual board election",
		"start_date":  testNow.Add(-time.Hour).Format(time.RFC3339),
		"end_date":    testNow.Add(time.Hour).Format(time.RFC3339),
		"candidates": []map[string]string{
			{"name": "Jane Doe", "party": "Growth"},
			{"name": "John Roe", "party": "Stability"},
		},
	}
}

func createElection(t *testing.T, s *testServer, body interface{}) domain.Election {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/elections", &adminPrincipal, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var e domain.Election
	decodeData(t, rec, &e)
	return e
}
