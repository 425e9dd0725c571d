package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/acssjr/vizu/internal/model"
	"github.com/acssjr/vizu/internal/repository"
)

// SelectorService picks the next eligible photo for a rater and records
// skips.
type SelectorService struct {
	photos *repository.PhotoRepo
	voters *repository.VoterRepo
	cache  *CacheService
}

func NewSelectorService(photos *repository.PhotoRepo, voters *repository.VoterRepo, cache *CacheService) *SelectorService {
	return &SelectorService{photos: photos, voters: voters, cache: cache}
}

// NextPhoto returns the next photo the rater should see, or
// repository.ErrNoPhotosAvailable when nothing is eligible. A rater with
// no profile yet is auto-created and treated as having unknown
// demographics (matching only untargeted photos on the unknown side).
func (s *SelectorService) NextPhoto(ctx context.Context, voterID string) (*model.NextPhotoResponse, error) {
	voter, err := s.voters.FindByVoterID(ctx, voterID)
	if errors.Is(err, repository.ErrVoterNotFound) {
		if err := s.voters.CreateIfNotExists(ctx, voterID); err != nil {
			return nil, err
		}
		voter = &model.Voter{VoterID: voterID}
	} else if err != nil {
		return nil, err
	}

	// Skip marks are an eligibility input, but losing them must never
	// block the selector.
	skipped, err := s.cache.SkippedPhotoIDs(ctx, voterID)
	if err != nil {
		log.Printf("selector: skip lookup error, ignoring skips: %v", err)
		skipped = nil
	}

	photo, err := s.photos.NextFor(ctx, voter, skipped)
	if err != nil {
		return nil, err
	}

	return &model.NextPhotoResponse{
		PhotoID:  photo.PhotoID,
		ImageURL: photo.ImageURL,
		Category: photo.Category,
	}, nil
}

// Aggregate returns the owner-facing aggregate view of a photo. Reads go
// cache-aside through Redis; the reported bool is whether the cache served
// the response.
func (s *SelectorService) Aggregate(ctx context.Context, photoID string) (*model.PhotoAggregateResponse, bool, error) {
	if data, err := s.cache.GetPhoto(ctx, photoID); err == nil && data != nil {
		var resp model.PhotoAggregateResponse
		if json.Unmarshal(data, &resp) == nil {
			return &resp, true, nil
		}
	} else if err != nil {
		log.Printf("selector: cache read error for %s: %v", photoID, err)
	}

	photo, err := s.photos.FindByPhotoID(ctx, photoID)
	if err != nil {
		return nil, false, err
	}

	resp := &model.PhotoAggregateResponse{
		PhotoID:         photo.PhotoID,
		VoteCount:       photo.VoteCount,
		AvgAttraction:   photo.AvgAttraction,
		AvgTrust:        photo.AvgTrust,
		AvgIntelligence: photo.AvgIntelligence,
		AvgConfidence:   photo.AvgConfidence,
		LastUpdated:     photo.LastUpdated.UTC().Format(time.RFC3339),
	}

	if err := s.cache.SetPhoto(ctx, photoID, resp); err != nil {
		log.Printf("selector: cache write error for %s: %v", photoID, err)
	}
	return resp, false, nil
}

// Skip records a one-hour exclusion of the photo for the rater, with no
// reward or penalty and no effect on the photo's aggregate. Skip failures
// are deliberately non-critical: they are logged and reported as success
// so a cache outage never blocks the rater's flow.
func (s *SelectorService) Skip(ctx context.Context, voterID, photoID string) {
	if err := s.cache.MarkSkipped(ctx, voterID, photoID); err != nil {
		log.Printf("selector: skip record error for %s: %v", photoID, err)
	}
}
