package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acssjr/vizu/internal/engine"
	"github.com/acssjr/vizu/internal/model"
)

const pgUniqueViolation = "23505"

type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// SubmitParams carries one validated vote submission into the transaction.
// BaseKarma is the reward after the pattern penalty has been applied by the
// caller (the session state machine lives outside the transaction).
type SubmitParams struct {
	PhotoID      string
	VoterID      string
	Ratings      model.Ratings
	Tags         []string
	Note         string
	Meta         *model.SubmissionMeta
	BaseKarma    int
	KarmaCeiling int
}

// SubmitResult reports what one committed submission produced.
type SubmitResult struct {
	VoteID      string
	KarmaEarned int
	VoteCount   int
	Category    string
	Bias        float64
	Weight      float64
}

// Submit runs the whole submission as one transaction: validate the photo,
// derive the rater's statistics from their history, normalize the ratings,
// insert the vote, recompute the photo aggregate over the full vote set,
// and award karma clamped to the ceiling. Either every step commits or none
// does.
//
// The photo row is locked FOR UPDATE so concurrent submissions on the same
// photo serialize their read-all-votes/write-aggregate step. Duplicate
// votes are caught by the (photo_id, voter_id) unique constraint, not by a
// prior existence check, so two racing submissions can never both land.
func (r *VoteRepo) Submit(ctx context.Context, p SubmitParams) (*SubmitResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock and validate the photo.
	var ownerID, status, category string
	var expiresAt *time.Time
	err = tx.QueryRow(ctx, `
		SELECT owner_id, status, category, expires_at FROM photos
		WHERE photo_id = $1
		FOR UPDATE`, p.PhotoID).Scan(&ownerID, &status, &category, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	switch {
	case ownerID == p.VoterID:
		return nil, ErrSelfVote
	case status != model.PhotoStatusApproved:
		return nil, ErrPhotoInactive
	case expiresAt != nil && !expiresAt.After(time.Now()):
		return nil, ErrPhotoExpired
	}

	// Ensure the voter exists and fetch their current karma.
	var currentKarma int
	err = tx.QueryRow(ctx, `
		INSERT INTO voters (voter_id) VALUES ($1)
		ON CONFLICT (voter_id) DO UPDATE SET last_active = NOW()
		RETURNING karma`, p.VoterID).Scan(&currentKarma)
	if err != nil {
		return nil, err
	}

	// Derive the rater's statistics from their full rating history.
	stats, err := voterStats(ctx, tx, p.VoterID)
	if err != nil {
		return nil, err
	}
	norm := engine.Normalize(p.Ratings, stats)

	// Insert the vote. The unique constraint closes the duplicate race.
	voteID := uuid.NewString()
	var durationMs *int
	device := ""
	if p.Meta != nil {
		if p.Meta.DurationMs > 0 {
			durationMs = &p.Meta.DurationMs
		}
		device = p.Meta.Device
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO votes (
			id, photo_id, voter_id,
			attraction, trust, intelligence,
			attraction_norm, trust_norm, intelligence_norm,
			voter_weight, voter_bias,
			tags, note, duration_ms, device)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		voteID, p.PhotoID, p.VoterID,
		p.Ratings.Attraction, p.Ratings.Trust, p.Ratings.Intelligence,
		norm.Ratings.Attraction, norm.Ratings.Trust, norm.Ratings.Intelligence,
		norm.Weight, norm.Bias,
		p.Tags, p.Note, durationMs, device)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateVote
		}
		return nil, err
	}

	// Recompute the aggregate over the entire vote set, fresh weights included.
	voteCount, err := recomputeAggregate(ctx, tx, p.PhotoID)
	if err != nil {
		return nil, err
	}

	// Award karma, clamped to the ceiling and never negative.
	awarded := p.BaseKarma
	if room := p.KarmaCeiling - currentKarma; awarded > room {
		awarded = room
	}
	if awarded < 0 {
		awarded = 0
	}
	_, err = tx.Exec(ctx, `
		UPDATE voters
		SET karma = karma + $2, total_votes = total_votes + 1, last_active = NOW()
		WHERE voter_id = $1`, p.VoterID, awarded)
	if err != nil {
		return nil, err
	}

	// Wake the reconcile worker so caches refresh.
	if _, err = tx.Exec(ctx, `SELECT pg_notify('vote_changes', $1)`, p.PhotoID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &SubmitResult{
		VoteID:      voteID,
		KarmaEarned: awarded,
		VoteCount:   voteCount,
		Category:    category,
		Bias:        norm.Bias,
		Weight:      norm.Weight,
	}, nil
}

// voterStats flattens the rater's historical raw axis values and derives
// mean/stddev/count from them.
func voterStats(ctx context.Context, tx pgx.Tx, voterID string) (engine.VoterStats, error) {
	rows, err := tx.Query(ctx, `
		SELECT attraction, trust, intelligence FROM votes WHERE voter_id = $1`, voterID)
	if err != nil {
		return engine.VoterStats{}, err
	}
	defer rows.Close()

	var values []float64
	votes := 0
	for rows.Next() {
		var a, tr, i int
		if err := rows.Scan(&a, &tr, &i); err != nil {
			return engine.VoterStats{}, err
		}
		values = append(values, float64(a), float64(tr), float64(i))
		votes++
	}
	if err := rows.Err(); err != nil {
		return engine.VoterStats{}, err
	}
	return engine.ComputeVoterStats(values, votes), nil
}

// recomputeAggregate re-reads every vote for the photo and writes the
// weighted per-axis averages and confidence back to the photo row. The
// caller holds the photo row lock.
func recomputeAggregate(ctx context.Context, tx pgx.Tx, photoID string) (int, error) {
	rows, err := tx.Query(ctx, `
		SELECT attraction_norm, trust_norm, intelligence_norm, voter_weight
		FROM votes WHERE photo_id = $1`, photoID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var attraction, trust, intelligence, weights []float64
	for rows.Next() {
		var a, tr, i, w float64
		if err := rows.Scan(&a, &tr, &i, &w); err != nil {
			return 0, err
		}
		attraction = append(attraction, a)
		trust = append(trust, tr)
		intelligence = append(intelligence, i)
		weights = append(weights, w)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	n := len(weights)
	if n == 0 {
		// Aggregate stays undefined until the first vote lands.
		_, err = tx.Exec(ctx, `
			UPDATE photos
			SET vote_count = 0, avg_attraction = NULL, avg_trust = NULL,
			    avg_intelligence = NULL, avg_confidence = NULL, last_updated = NOW()
			WHERE photo_id = $1`, photoID)
		return 0, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE photos
		SET vote_count = $2, avg_attraction = $3, avg_trust = $4,
		    avg_intelligence = $5, avg_confidence = $6, last_updated = NOW()
		WHERE photo_id = $1`,
		photoID, n,
		engine.WeightedAverage(attraction, weights),
		engine.WeightedAverage(trust, weights),
		engine.WeightedAverage(intelligence, weights),
		engine.Confidence(n))
	return n, err
}

// RecalculateAggregate recomputes one photo's aggregate outside a
// submission, locking the photo row first. Used by the reconcile worker
// to repair drift (e.g. after manual vote removals).
func (r *VoteRepo) RecalculateAggregate(ctx context.Context, photoID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx,
		`SELECT photo_id FROM photos WHERE photo_id = $1 FOR UPDATE`, photoID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPhotoNotFound
	}
	if err != nil {
		return err
	}

	if _, err := recomputeAggregate(ctx, tx, photoID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
