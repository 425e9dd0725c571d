package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acssjr/vizu/internal/model"
)

type VoterRepo struct {
	pool *pgxpool.Pool
}

func NewVoterRepo(pool *pgxpool.Pool) *VoterRepo {
	return &VoterRepo{pool: pool}
}

// FindByVoterID returns a single voter by their hashed voter ID.
func (r *VoterRepo) FindByVoterID(ctx context.Context, voterID string) (*model.Voter, error) {
	query := `
		SELECT voter_id, gender, birth_date, karma, total_votes, first_seen, last_active
		FROM voters
		WHERE voter_id = $1`

	var v model.Voter
	err := r.pool.QueryRow(ctx, query, voterID).Scan(
		&v.VoterID, &v.Gender, &v.BirthDate, &v.Karma, &v.TotalVotes,
		&v.FirstSeen, &v.LastActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVoterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateIfNotExists inserts a new voter with default values if one doesn't
// already exist, refreshing last_active either way.
func (r *VoterRepo) CreateIfNotExists(ctx context.Context, voterID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO voters (voter_id) VALUES ($1)
		ON CONFLICT (voter_id) DO UPDATE SET last_active = NOW()`, voterID)
	return err
}

// GetStats returns aggregate statistics from all tables.
func (r *VoterRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM photos WHERE status = 'approved') AS total_photos,
			(SELECT COUNT(*) FROM votes) AS total_votes,
			(SELECT COUNT(*) FROM voters) AS total_voters,
			(SELECT COUNT(*) FROM voters WHERE last_active > NOW() - INTERVAL '24 hours') AS active_voters_24h`

	var stats model.StatsResponse
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalPhotos, &stats.TotalVotes, &stats.TotalVoters, &stats.ActiveVoters24h,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
