package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/acssjr/vizu/internal/middleware"
	"github.com/acssjr/vizu/internal/repository"
	"github.com/acssjr/vizu/internal/service"
)

type VoterHandler struct {
	svc *service.VoterService
}

func NewVoterHandler(svc *service.VoterService) *VoterHandler {
	return &VoterHandler{svc: svc}
}

// GetByVoterID handles GET /api/voters/:voterId
func (h *VoterHandler) GetByVoterID(c fiber.Ctx) error {
	voterID, errMsg := middleware.ValidateVoterID(c.Params("voterId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Lookup(c.Context(), voterID)
	if err != nil {
		if errors.Is(err, repository.ErrVoterNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Voter not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup voter")
	}

	return c.JSON(resp)
}
