package handlers

import (
	"errors"

	errs "aegis/internal/errors"
	"aegis/internal/models"
	"aegis/internal/services/review"
	"aegis/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	service review.Service
}

func NewReviewHandler(s review.Service) *ReviewHandler { return &ReviewHandler{service: s} }

// SubmitReview applies a reviewer decision to a flagged record.
// Conflicts surface as 409 so clients know to reload and retry.
func (h *ReviewHandler) SubmitReview(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	kind := review.RecordKind(c.Params("kind"))
	recordID, err := c.ParamsInt("id")
	if err != nil || recordID <= 0 {
		return response.BadRequest(c, "invalid record id")
	}

	var input struct {
		Decision string `json:"decision"`
		Notes    string `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	err = h.service.SubmitReview(c.Context(), kind, uint(recordID), review.Decision(input.Decision), claims.UserID, input.Notes)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrRecordNotFound):
			return response.NotFound(c, "record not found")
		case errors.Is(err, errs.ErrInvalidStateTransition):
			return response.Conflict(c, err.Error())
		case errors.Is(err, errs.ErrStaleState):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, err.Error())
		}
	}
	return response.Success(c, "review submitted", fiber.Map{
		"kind":      kind,
		"record_id": recordID,
		"decision":  input.Decision,
	})
}
