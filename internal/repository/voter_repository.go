package repository

import (
	"context"
	"fmt"

	"evote-be/pkg/database"
)

// PostgresVoterRepository answers the voter identity checks the ballot
// path depends on.
type PostgresVoterRepository struct {
	db *database.PostgresDB
}

func NewPostgresVoterRepository(db *database.PostgresDB) *PostgresVoterRepository {
	return &PostgresVoterRepository{db: db}
}

func (r *PostgresVoterRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM voters WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check voter: %w", err)
	}
	return exists, nil
}

func (r *PostgresVoterRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM voters`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return count, nil
}
