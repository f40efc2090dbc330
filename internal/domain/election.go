package domain

import (
	"strings"
	"time"
)

// Gender is an optional candidate attribute
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is a known gender value. The empty string is
// accepted because the field is optional.
func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Candidate is a choice within one election. Candidates are embedded in
// their parent election and are not addressable across elections.
type Candidate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Party  string `json:"party"`
	Gender Gender `json:"gender,omitempty"`
}

// Election is the top-level voteable entity: a time window, an ordered
// candidate list, and the append-only tally built from accepted ballots.
type Election struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	Status      Status         `json:"status"`
	Candidates  []Candidate    `json:"candidates"`
	Voters      []string       `json:"voters"`
	Voted       int            `json:"voted"`
	Results     map[string]int `json:"results"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CandidateByID returns the candidate with the given id, preserving the
// list as the source of truth for insertion order.
func (e *Election) CandidateByID(id string) (*Candidate, bool) {
	for i := range e.Candidates {
		if e.Candidates[i].ID == id {
			return &e.Candidates[i], true
		}
	}
	return nil, false
}

// HasVoted reports whether the voter already appears in the ledger.
func (e *Election) HasVoted(voterID string) bool {
	for _, v := range e.Voters {
		if v == voterID {
			return true
		}
	}
	return false
}

// ReadyForLaunch reports whether the election carries everything a
// non-draft status requires: title, description, both dates, and at
// least two candidates.
func (e *Election) ReadyForLaunch() bool {
	return strings.TrimSpace(e.Title) != "" &&
		strings.TrimSpace(e.Description) != "" &&
		e.StartDate != nil &&
		e.EndDate != nil &&
		len(e.Candidates) >= 2
}

// WindowContains reports whether t falls inside [StartDate, EndDate],
// bounds inclusive. False when either bound is missing.
func (e *Election) WindowContains(t time.Time) bool {
	if e.StartDate == nil || e.EndDate == nil {
		return false
	}
	return !t.Before(*e.StartDate) && !t.After(*e.EndDate)
}

// Clone returns a deep copy. Repositories hand out clones so callers can
// merge partial updates without mutating shared state.
func (e *Election) Clone() *Election {
	dup := *e
	dup.Candidates = make([]Candidate, len(e.Candidates))
	copy(dup.Candidates, e.Candidates)
	dup.Voters = make([]string, len(e.Voters))
	copy(dup.Voters, e.Voters)
	dup.Results = make(map[string]int, len(e.Results))
	for k, v := range e.Results {
		dup.Results[k] = v
	}
	if e.StartDate != nil {
		t := *e.StartDate
		dup.StartDate = &t
	}
	if e.EndDate != nil {
		t := *e.EndDate
		dup.EndDate = &t
	}
	return &dup
}

// CandidateInput carries the caller-supplied fields for a new or updated
// candidate.
type CandidateInput struct {
	Name   string `json:"name"`
	Party  string `json:"party"`
	Gender Gender `json:"gender,omitempty"`
}

// CreateElectionRequest is the body of POST /api/elections.
type CreateElectionRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Candidates  []CandidateInput `json:"candidates,omitempty"`
}

// UpdateElectionRequest is the body of PATCH /api/elections/{id}. Nil
// fields are left untouched; the merge happens before validation so the
// guard always sees the would-be-final state.
type UpdateElectionRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}
