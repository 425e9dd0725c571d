package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acssjr/vizu/internal/model"
)

type PhotoRepo struct {
	pool *pgxpool.Pool
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

const photoColumns = `
	photo_id, owner_id, image_url, category, status, vote_count,
	target_gender, target_age_min, target_age_max,
	created_at, expires_at, last_updated,
	avg_attraction, avg_trust, avg_intelligence, avg_confidence`

func scanPhoto(row pgx.Row) (*model.Photo, error) {
	var p model.Photo
	err := row.Scan(
		&p.PhotoID, &p.OwnerID, &p.ImageURL, &p.Category, &p.Status, &p.VoteCount,
		&p.TargetGender, &p.TargetAgeMin, &p.TargetAgeMax,
		&p.CreatedAt, &p.ExpiresAt, &p.LastUpdated,
		&p.AvgAttraction, &p.AvgTrust, &p.AvgIntelligence, &p.AvgConfidence,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// NextFor picks the next eligible photo for the given rater.
//
// Eligibility: not self-owned, approved, not expired, not yet voted on by
// the rater, gender/age targeting satisfied, and not in the caller-supplied
// exclusion list (skipped photos). A rater with unknown gender or unknown
// age matches only photos without the corresponding bound: a NULL $3 never
// equals target_gender, and the -1 age sentinel fails both range checks.
// Among eligible photos the one with the fewest votes wins, oldest first
// within a tie. No lock is taken: two concurrent raters may receive the
// same photo, since uniqueness is enforced at vote submission, not at
// assignment.
func (r *PhotoRepo) NextFor(ctx context.Context, voter *model.Voter, excludeIDs []string) (*model.Photo, error) {
	age := voter.Age(time.Now())
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	query := `
		SELECT ` + photoColumns + `
		FROM photos p
		WHERE p.owner_id <> $1
		  AND p.status = $2
		  AND (p.expires_at IS NULL OR p.expires_at > NOW())
		  AND NOT EXISTS (
		        SELECT 1 FROM votes v
		        WHERE v.photo_id = p.photo_id AND v.voter_id = $1)
		  AND (p.target_gender IS NULL OR p.target_gender = $3::text)
		  AND (p.target_age_min IS NULL OR ($4 >= 0 AND $4 >= p.target_age_min))
		  AND (p.target_age_max IS NULL OR ($4 >= 0 AND $4 <= p.target_age_max))
		  AND NOT (p.photo_id = ANY($5))
		ORDER BY p.vote_count ASC, p.created_at ASC
		LIMIT 1`

	photo, err := scanPhoto(r.pool.QueryRow(ctx, query,
		voter.VoterID, model.PhotoStatusApproved, voter.Gender, age, excludeIDs))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoPhotosAvailable
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// FindByPhotoID returns a single photo by exact ID.
func (r *PhotoRepo) FindByPhotoID(ctx context.Context, photoID string) (*model.Photo, error) {
	photo, err := scanPhoto(r.pool.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE photo_id = $1`, photoID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// ExpireDue transitions approved photos past their expiry to the expired
// state. Returns how many photos were expired.
func (r *PhotoRepo) ExpireDue(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE photos SET status = $1, last_updated = NOW()
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at <= NOW()`,
		model.PhotoStatusExpired, model.PhotoStatusApproved)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ChangedSince returns IDs of photos whose aggregate changed after the
// given time. Used by the reconcile worker to bound its repair pass.
func (r *PhotoRepo) ChangedSince(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT photo_id FROM photos WHERE last_updated > $1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
