package domain

import (
	"math"
	"sort"
	"time"

	"evote-be/pkg/errors"
)

// CandidateResult is one row of the public results board.
type CandidateResult struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Party       string  `json:"party"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"`
}

// ElectionResults is the display-ready projection of an election's tally.
type ElectionResults struct {
	ElectionID  string            `json:"election_id"`
	Title       string            `json:"title"`
	Status      Status            `json:"status"`
	StartDate   *time.Time        `json:"start_date,omitempty"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
	TotalVoters int               `json:"total_voters"`
	Voted       int               `json:"voted"`
	Candidates  []CandidateResult `json:"candidates"`
}

// ProjectResults computes the ranked results board from persisted state.
// It is a pure function: it never mutates the election and two calls on
// the same state yield identical output. Tallies are only visible while
// the election is active or after it completed.
func ProjectResults(e *Election, totalVoters int) (*ElectionResults, error) {
	if e.Status != StatusActive && e.Status != StatusCompleted {
		return nil, errors.NewForbiddenError("results are not available for this election")
	}

	rows := make([]CandidateResult, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		votes := e.Results[c.ID]
		var pct float64
		if e.Voted > 0 {
			pct = roundPercent(float64(votes) / float64(e.Voted) * 100)
		}
		rows = append(rows, CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Party:       c.Party,
			Votes:       votes,
			Percentage:  pct,
		})
	}

	// Stable sort keeps candidate insertion order as the tie-break.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Votes > rows[j].Votes
	})

	return &ElectionResults{
		ElectionID:  e.ID,
		Title:       e.Title,
		Status:      e.Status,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		TotalVoters: totalVoters,
		Voted:       e.Voted,
		Candidates:  rows,
	}, nil
}

// roundPercent rounds to two decimal places.
func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
