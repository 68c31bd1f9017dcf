package handlers

import (
	"errors"
	"time"

	errs "aegis/internal/errors"
	"aegis/internal/models"
	"aegis/internal/services/monitoring"
	"aegis/internal/services/screening"
	"aegis/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ComplianceHandler struct {
	screening  screening.Service
	monitoring monitoring.Service
}

func NewComplianceHandler(s screening.Service, m monitoring.Service) *ComplianceHandler {
	return &ComplianceHandler{screening: s, monitoring: m}
}

func (h *ComplianceHandler) ScreenTransaction(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	var input screening.TransactionData
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	record, err := h.screening.ScreenTransaction(c.Context(), claims.UserID, input)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "transaction screened", record)
}

func (h *ComplianceHandler) MonitorTransaction(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	var input monitoring.TransactionEvent
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	result, err := h.monitoring.MonitorTransaction(c.Context(), claims.UserID, input)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "transaction monitored", result)
}

func (h *ComplianceHandler) GetScreeningStatus(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	record, err := h.screening.GetScreeningStatus(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return response.NotFound(c, "no screenings found")
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "screening status", record)
}

func (h *ComplianceHandler) GetPendingScreenings(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	records, err := h.screening.GetPendingReviews(c.Context(), limit)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "pending screenings", records)
}

func (h *ComplianceHandler) GetPendingMonitoring(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	records, err := h.monitoring.GetPendingReviews(c.Context(), limit)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "pending monitoring records", records)
}

func (h *ComplianceHandler) GenerateReport(c *fiber.Ctx) error {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		return response.BadRequest(c, "invalid start date, want YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		return response.BadRequest(c, "invalid end date, want YYYY-MM-DD")
	}
	rows, err := h.monitoring.GenerateComplianceReport(c.Context(), start, end.Add(24*time.Hour))
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "compliance report", rows)
}
