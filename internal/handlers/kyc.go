package handlers

import (
	"errors"

	errs "aegis/internal/errors"
	"aegis/internal/models"
	"aegis/internal/services/kyc"
	"aegis/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type KYCHandler struct {
	service kyc.Service
}

func NewKYCHandler(s kyc.Service) *KYCHandler { return &KYCHandler{service: s} }

func (h *KYCHandler) SubmitKYC(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	var input kyc.Submission
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	submission, err := h.service.SubmitKYC(c.Context(), claims.UserID, input)
	if err != nil {
		if errors.Is(err, errs.ErrKYCValidation) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "KYC submitted", submission)
}

func (h *KYCHandler) GetStatus(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	submission, err := h.service.GetStatus(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return response.Success(c, "KYC status", fiber.Map{"status": "not_submitted"})
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "KYC status", submission)
}

func (h *KYCHandler) GetPendingReviews(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	submissions, err := h.service.GetPendingReviews(c.Context(), limit)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "pending KYC reviews", submissions)
}
