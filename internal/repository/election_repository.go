package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"evote-be/internal/domain"
	"evote-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

// PostgresElectionRepository stores each election as a single row with the
// candidate list, voter ledger, and tally embedded. The row is the unit of
// atomicity: cast-vote is one conditional UPDATE, never read-then-write.
type PostgresElectionRepository struct {
	db *database.PostgresDB
}

func NewPostgresElectionRepository(db *database.PostgresDB) *PostgresElectionRepository {
	return &PostgresElectionRepository{db: db}
}

const electionColumns = `id, title, description, start_date, end_date, status,
	candidates, voters, voted, results, created_by, created_at, updated_at`

func (r *PostgresElectionRepository) Create(ctx context.Context, e *domain.Election) error {
	candidates, results, err := marshalEmbedded(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO elections (
			id, title, description, start_date, end_date, status,
			candidates, voters, voted, results, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		e.ID,
		e.Title,
		e.Description,
		e.StartDate,
		e.EndDate,
		string(e.Status),
		candidates,
		e.Voters,
		e.Voted,
		results,
		e.CreatedBy,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create election: %w", err)
	}
	return nil
}

func (r *PostgresElectionRepository) GetByID(ctx context.Context, id string) (*domain.Election, error) {
	query := `SELECT ` + electionColumns + ` FROM elections WHERE id = $1`

	e, err := scanElection(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get election: %w", err)
	}
	return e, nil
}

func (r *PostgresElectionRepository) List(ctx context.Context) ([]domain.Election, error) {
	query := `SELECT ` + electionColumns + ` FROM elections ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}
	defer rows.Close()

	var elections []domain.Election
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, *e)
	}
	return elections, rows.Err()
}

func (r *PostgresElectionRepository) Update(ctx context.Context, e *domain.Election) error {
	candidates, results, err := marshalEmbedded(e)
	if err != nil {
		return err
	}

	query := `
		UPDATE elections
		SET title = $2, description = $3, start_date = $4, end_date = $5,
		    status = $6, candidates = $7, voters = $8, voted = $9,
		    results = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		e.ID,
		e.Title,
		e.Description,
		e.StartDate,
		e.EndDate,
		string(e.Status),
		candidates,
		e.Voters,
		e.Voted,
		results,
	).Scan(&e.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("election %s vanished during update", e.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update election: %w", err)
	}
	return nil
}

func (r *PostgresElectionRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM elections WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete election: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CastVote runs the duplicate guard and the three tally writes as a single
// conditional UPDATE. The WHERE clause rejects voters already present in
// the ledger, so two concurrent requests from the same voter serialize on
// the row and exactly one passes.
func (r *PostgresElectionRepository) CastVote(ctx context.Context, electionID, voterID, candidateID string) (*VoteCount, error) {
	query := `
		UPDATE elections
		SET voters  = array_append(voters, $2),
		    voted   = voted + 1,
		    results = jsonb_set(results, ARRAY[$3::text],
		              to_jsonb(COALESCE((results->>$3)::int, 0) + 1), true),
		    updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(voters))
		RETURNING (results->>$3)::int, voted
	`

	var count VoteCount
	err := r.db.Pool.QueryRow(ctx, query, electionID, voterID, candidateID).
		Scan(&count.CandidateVotes, &count.TotalVoted)
	if err == pgx.ErrNoRows {
		// Either the election is gone or the guard fired.
		var exists bool
		checkErr := r.db.Pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM elections WHERE id = $1)`, electionID).Scan(&exists)
		if checkErr != nil {
			return nil, fmt.Errorf("failed to check election after rejected vote: %w", checkErr)
		}
		if !exists {
			return nil, nil
		}
		return nil, ErrAlreadyVoted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}
	return &count, nil
}

// ReconcileStatuses advances stale statuses in bulk. The order matters:
// elections that missed their whole window go straight to completed before
// the activation sweep can pick them up.
func (r *PostgresElectionRepository) ReconcileStatuses(ctx context.Context, now time.Time) (ReconcileStats, error) {
	var stats ReconcileStats

	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE elections SET status = 'completed', updated_at = now()
		WHERE status = 'active' AND end_date < $1`, now)
	if err != nil {
		return stats, fmt.Errorf("failed to complete active elections: %w", err)
	}
	stats.Completed = int(tag.RowsAffected())

	tag, err = r.db.Pool.Exec(ctx, `
		UPDATE elections SET status = 'completed', updated_at = now()
		WHERE status IN ('draft', 'upcoming') AND end_date < $1`, now)
	if err != nil {
		return stats, fmt.Errorf("failed to expire missed elections: %w", err)
	}
	stats.Expired = int(tag.RowsAffected())

	tag, err = r.db.Pool.Exec(ctx, `
		UPDATE elections SET status = 'active', updated_at = now()
		WHERE status = 'upcoming' AND start_date <= $1 AND end_date >= $1`, now)
	if err != nil {
		return stats, fmt.Errorf("failed to activate upcoming elections: %w", err)
	}
	stats.Activated = int(tag.RowsAffected())

	return stats, nil
}

// electionRow is satisfied by both pgx.Row and pgx.Rows.
type electionRow interface {
	Scan(dest ...any) error
}

func scanElection(row electionRow) (*domain.Election, error) {
	var (
		e             domain.Election
		status        string
		candidatesRaw []byte
		resultsRaw    []byte
	)

	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.StartDate,
		&e.EndDate,
		&status,
		&candidatesRaw,
		&e.Voters,
		&e.Voted,
		&resultsRaw,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Status = domain.Status(status)
	if err := json.Unmarshal(candidatesRaw, &e.Candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}
	if err := json.Unmarshal(resultsRaw, &e.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	if e.Candidates == nil {
		e.Candidates = []domain.Candidate{}
	}
	if e.Results == nil {
		e.Results = map[string]int{}
	}
	if e.Voters == nil {
		e.Voters = []string{}
	}
	return &e, nil
}

// marshalEmbedded encodes the embedded candidate list and tally map. The
// map round-trips as a JSON object keyed by candidate id so the in-memory
// and persisted representations never diverge.
func marshalEmbedded(e *domain.Election) (candidates, results []byte, err error) {
	if e.Candidates == nil {
		e.Candidates = []domain.Candidate{}
	}
	if e.Results == nil {
		e.Results = map[string]int{}
	}
	if e.Voters == nil {
		e.Voters = []string{}
	}

	candidates, err = json.Marshal(e.Candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode candidates: %w", err)
	}
	results, err = json.Marshal(e.Results)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return candidates, results, nil
}
