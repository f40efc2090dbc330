package domain

import "time"

// BallotRequest is the body of POST /api/voters/election/{electionId}.
type BallotRequest struct {
	CandidateID string `json:"candidate_id"`
}

// BallotReceipt is returned to the voter after an accepted ballot. The
// tallies reflect the state immediately after the atomic update.
type BallotReceipt struct {
	ReceiptID      string    `json:"receipt_id"`
	ElectionID     string    `json:"election_id"`
	CandidateID    string    `json:"candidate_id"`
	CandidateVotes int       `json:"candidate_votes"`
	TotalVoted     int       `json:"total_voted"`
	CastAt         time.Time `json:"cast_at"`
}
