package service

import (
	"context"
	"math"
	"time"

	"github.com/acssjr/vizu/internal/model"
	"github.com/acssjr/vizu/internal/repository"
)

type VoterService struct {
	repo *repository.VoterRepo
}

func NewVoterService(repo *repository.VoterRepo) *VoterService {
	return &VoterService{repo: repo}
}

// Lookup returns the voter response for a given voter ID.
func (s *VoterService) Lookup(ctx context.Context, voterID string) (*model.VoterResponse, error) {
	v, err := s.repo.FindByVoterID(ctx, voterID)
	if err != nil {
		return nil, err
	}

	accountAge := int(math.Floor(time.Since(v.FirstSeen).Hours() / 24))

	return &model.VoterResponse{
		VoterID:    v.VoterID,
		Karma:      v.Karma,
		TotalVotes: v.TotalVotes,
		AccountAge: accountAge,
	}, nil
}

// GetStats returns aggregate platform statistics.
func (s *VoterService) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	return s.repo.GetStats(ctx)
}
