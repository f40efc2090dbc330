package handler

import (
	"net/http"
	"testing"

	"evote-be/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateElection_DraftEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/elections", &adminPrincipal,
		map[string]string{"title": "Board Vote"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var e domain.Election
	decodeData(t, rec, &e)
	assert.Equal(t, domain.StatusDraft, e.Status)
	assert.Equal(t, "Board Vote", e.Title)
}

func TestCreateElection_FullySpecified(t *testing.T) {
	s := newTestServer(t)

	e := createElection(t, s, fullElectionBody())
	assert.Equal(t, domain.StatusActive, e.Status)
	assert.Len(t, e.Candidates, 2)
}

func TestCreateElection_ValidationEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/elections", &adminPrincipal,
		map[string]string{"title": ""})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "validation", env.Type)
	assert.Equal(t, "title is required", env.Message)
}

func TestCreateElection_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/elections", &adminPrincipal, "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateElection_Unauthenticated(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/elections", nil,
		map[string]string{"title": "Board Vote"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAndGetElections(t *testing.T) {
	s := newTestServer(t)
	created := createElection(t, s, fullElectionBody())

	rec := s.do(t, http.MethodGet, "/api/elections", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []domain.Election
	decodeData(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = s.do(t, http.MethodGet, "/api/elections/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Election
	decodeData(t, rec, &got)
	assert.Equal(t, created.Title, got.Title)
}

func TestGetElection_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/elections/missing", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "not_found", env.Type)
}

func TestUpdateElection_DirectStatusRejected(t *testing.T) {
	s := newTestServer(t)
	e := createElection(t, s, fullElectionBody())

	rec := s.do(t, http.MethodPatch, "/api/elections/"+e.ID, &adminPrincipal,
		map[string]string{"status": "completed"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "status cannot be set directly", env.Message)
}

func TestUpdateElection_Cancel(t *testing.T) {
	s := newTestServer(t)
	e := createElection(t, s, fullElectionBody())

	rec := s.do(t, http.MethodPatch, "/api/elections/"+e.ID, &adminPrincipal,
		map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Election
	decodeData(t, rec, &got)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

func TestDeleteElection_Envelope(t *testing.T) {
	s := newTestServer(t)
	e := createElection(t, s, fullElectionBody())

	rec := s.do(t, http.MethodDelete, "/api/elections/"+e.ID, &adminPrincipal, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/elections/"+e.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCandidateRoutes(t *testing.T) {
	s := newTestServer(t)
	e := createElection(t, s, fullElectionBody())

	rec := s.do(t, http.MethodPost, "/api/elections/"+e.ID+"/candidates", &adminPrincipal,
		map[string]string{"name": "Kim Poe", "party": "Reform"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var updated domain.Election
	decodeData(t, rec, &updated)
	require.Len(t, updated.Candidates, 3)
	added := updated.Candidates[2]

	rec = s.do(t, http.MethodPatch, "/api/elections/"+e.ID+"/candidates/"+added.ID, &adminPrincipal,
		map[string]string{"party": "Renewal"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &updated)
	assert.Equal(t, "Renewal", updated.Candidates[2].Party)
	assert.Equal(t, "Kim Poe", updated.Candidates[2].Name)

	rec = s.do(t, http.MethodDelete, "/api/elections/"+e.ID+"/candidates/"+added.ID, &adminPrincipal, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &updated)
	assert.Len(t, updated.Candidates, 2)
}

func TestSettingsRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/settings", &sysopPrincipal, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var settings domain.Settings
	decodeData(t, rec, &settings)
	assert.False(t, settings.MaintenanceMode)

	rec = s.do(t, http.MethodPatch, "/api/settings", &sysopPrincipal,
		map[string]bool{"maintenance_mode": true})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &settings)
	assert.True(t, settings.MaintenanceMode)

	// Admins cannot flip system switches.
	rec = s.do(t, http.MethodPatch, "/api/settings", &adminPrincipal,
		map[string]bool{"maintenance_mode": false})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
