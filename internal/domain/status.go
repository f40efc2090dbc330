package domain

import (
	"time"

	"evote-be/pkg/errors"
)

// Status is the lifecycle state of an election.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusUpcoming, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// legalTransitions is the single-step transition table applied on every
// write. The batch reconciler is the only caller allowed to bypass it.
var legalTransitions = map[Status][]Status{
	StatusDraft:     {StatusUpcoming, StatusActive, StatusCompleted, StatusCancelled},
	StatusUpcoming:  {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal single-step edge.
// A self-transition is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ComputeStatus derives the date-driven status for a launched election.
// Both bounds are inclusive: an election is active from the first instant
// of its window through the last.
func ComputeStatus(now time.Time, start, end time.Time) Status {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusCompleted
	default:
		return StatusActive
	}
}

// NextStatus applies the reactive transition rules: it recomputes the
// status from the clock and rejects recomputations that would take an
// illegal single-step edge (for example upcoming -> completed, which must
// pass through the reconciler instead). Brand new documents skip the
// legality check because there is no prior state to transition from.
// Cancelled elections are never recomputed.
func NextStatus(current Status, isNew bool, now time.Time, start, end *time.Time) (Status, error) {
	if current == StatusCancelled {
		return StatusCancelled, nil
	}
	if start == nil || end == nil {
		return StatusDraft, nil
	}

	computed := ComputeStatus(now, *start, *end)
	if isNew || computed == current {
		return computed, nil
	}
	if !CanTransition(current, computed) {
		return current, errors.NewValidationError("invalid status transition", map[string]interface{}{
			"from": string(current),
			"to":   string(computed),
		})
	}
	return computed, nil
}
