package service

import (
	"context"
	"log"

	"github.com/acssjr/vizu/internal/engine"
	"github.com/acssjr/vizu/internal/model"
	"github.com/acssjr/vizu/internal/repository"
	"github.com/acssjr/vizu/internal/session"
)

// VoteService orchestrates vote submissions: it drives the session-scoped
// pattern state machine, computes the karma reward, and hands the vote to
// the repository transaction.
type VoteService struct {
	repo     *repository.VoteRepo
	cache    *CacheService
	sessions *session.Registry

	baseKarma    int
	karmaCeiling int
}

func NewVoteService(repo *repository.VoteRepo, cache *CacheService, sessions *session.Registry, baseKarma, karmaCeiling int) *VoteService {
	return &VoteService{
		repo:         repo,
		cache:        cache,
		sessions:     sessions,
		baseKarma:    baseKarma,
		karmaCeiling: karmaCeiling,
	}
}

// Submit processes a validated vote submission request.
//
// The pattern window is session state maintained here, outside the
// transaction. The state machine is consulted in two steps: a peek before
// the transactional submit decides the reward (full, or zero when the
// pattern persists past the warning), and the vote is committed to the
// window only once the store accepted it. A rejected submission (duplicate,
// self-vote, inactive or expired photo) therefore leaves the session state
// untouched and cannot consume the one-time warning. The first detection
// warns instead of penalizing; the warning flag rides back on the response.
func (s *VoteService) Submit(ctx context.Context, req model.VoteRequest) (*model.VoteResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = req.VoterID
	}

	outcome := s.sessions.Peek(sessionID, req.Ratings)
	karma := engine.KarmaWithPenalty(s.baseKarma, outcome.PatternDetected, outcome.Penalized)

	result, err := s.repo.Submit(ctx, repository.SubmitParams{
		PhotoID:      req.PhotoID,
		VoterID:      req.VoterID,
		Ratings:      req.Ratings,
		Tags:         req.Tags,
		Note:         req.Note,
		Meta:         req.Meta,
		BaseKarma:    karma,
		KarmaCeiling: s.karmaCeiling,
	})
	if err != nil {
		return nil, err
	}

	outcome = s.sessions.Commit(sessionID, req.Ratings)

	// Invalidate cache so the next read re-fetches the fresh aggregate.
	if s.cache != nil {
		if err := s.cache.InvalidatePhoto(ctx, req.PhotoID); err != nil {
			log.Printf("cache: invalidate photo error: %v", err)
		}
	}

	return &model.VoteResponse{
		Success:     true,
		VoteID:      result.VoteID,
		KarmaEarned: result.KarmaEarned,
		Warning:     outcome.WarnNow,
		Category:    result.Category,
		Penalized:   outcome.Penalized,
	}, nil
}
