package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/acssjr/vizu/internal/middleware"
	"github.com/acssjr/vizu/internal/repository"
	"github.com/acssjr/vizu/internal/service"
)

type PhotoHandler struct {
	svc *service.SelectorService
}

func NewPhotoHandler(svc *service.SelectorService) *PhotoHandler {
	return &PhotoHandler{svc: svc}
}

// GetNext handles GET /api/photos/next?voterId=X
func (h *PhotoHandler) GetNext(c fiber.Ctx) error {
	voterID, errMsg := middleware.ValidateVoterID(fiber.Query[string](c, "voterId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	photo, err := h.svc.NextPhoto(c.Context(), voterID)
	if err != nil {
		if errors.Is(err, repository.ErrNoPhotosAvailable) {
			// An empty pool is a normal state, not an error.
			return c.SendStatus(fiber.StatusNoContent)
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to select a photo")
	}

	return c.JSON(photo)
}

// GetAggregate handles GET /api/photos/:photoId
func (h *PhotoHandler) GetAggregate(c fiber.Ctx) error {
	photoID, errMsg := middleware.ValidatePhotoID(c.Params("photoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, cached, err := h.svc.Aggregate(c.Context(), photoID)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "PHOTO_NOT_FOUND", "Photo not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch photo")
	}

	if cached {
		Metrics.CacheHits.Inc()
	} else {
		Metrics.CacheMisses.Inc()
	}

	return c.JSON(resp)
}
