package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/acssjr/vizu/internal/middleware"
	"github.com/acssjr/vizu/internal/model"
	"github.com/acssjr/vizu/internal/repository"
	"github.com/acssjr/vizu/internal/service"
)

type VoteHandler struct {
	svc      *service.VoteService
	selector *service.SelectorService
}

func NewVoteHandler(svc *service.VoteService, selector *service.SelectorService) *VoteHandler {
	return &VoteHandler{svc: svc, selector: selector}
}

// Submit handles POST /api/votes
func (h *VoteHandler) Submit(c fiber.Ctx) error {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	// Validate photoId
	photoID, errMsg := middleware.ValidatePhotoID(req.PhotoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.PhotoID = photoID

	// Validate voterId
	voterID, errMsg := middleware.ValidateVoterID(req.VoterID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.VoterID = voterID

	// Validate all three rating axes before any side effect
	for _, r := range []struct {
		axis  string
		value int
	}{
		{"attraction", req.Ratings.Attraction},
		{"trust", req.Ratings.Trust},
		{"intelligence", req.Ratings.Intelligence},
	} {
		if errMsg := middleware.ValidateRating(r.axis, r.value); errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_RATING", errMsg)
		}
	}

	// Sanitize optional feedback fields
	tags, errMsg := middleware.ValidateTags(req.Tags)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Tags = tags
	req.Note = middleware.ValidateNote(req.Note)

	resp, err := h.svc.Submit(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPhotoNotFound):
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "PHOTO_NOT_FOUND", "Photo not found")
		case errors.Is(err, repository.ErrPhotoInactive):
			return middleware.ErrorResponse(c, fiber.StatusConflict, "PHOTO_INACTIVE", "Photo is not accepting votes")
		case errors.Is(err, repository.ErrPhotoExpired):
			return middleware.ErrorResponse(c, fiber.StatusConflict, "PHOTO_EXPIRED", "Photo has expired")
		case errors.Is(err, repository.ErrSelfVote):
			return middleware.ErrorResponse(c, fiber.StatusForbidden, "SELF_VOTE", "You cannot vote on your own photo")
		case errors.Is(err, repository.ErrDuplicateVote):
			return middleware.ErrorResponse(c, fiber.StatusConflict, "DUPLICATE_VOTE", "You have already voted on this photo")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit vote")
	}

	Metrics.VotesTotal.WithLabelValues(resp.Category).Inc()
	Metrics.KarmaAwarded.Add(float64(resp.KarmaEarned))
	if resp.Warning {
		Metrics.PatternWarningsTotal.Inc()
	}
	if resp.Penalized {
		Metrics.PatternPenaltiesTotal.Inc()
	}

	return c.JSON(resp)
}

// Skip handles POST /api/votes/skip
func (h *VoteHandler) Skip(c fiber.Ctx) error {
	var req model.SkipRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	photoID, errMsg := middleware.ValidatePhotoID(req.PhotoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	voterID, errMsg := middleware.ValidateVoterID(req.VoterID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	// Skips always succeed from the client's point of view.
	h.selector.Skip(c.Context(), voterID, photoID)
	Metrics.SkipsTotal.Inc()

	return c.JSON(fiber.Map{"success": true})
}
