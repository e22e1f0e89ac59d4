package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// StatisticsHandler exposes aggregated submission statistics.
type StatisticsHandler struct {
	statistics service.StatisticsService
	logger     zerolog.Logger
}

// NewStatisticsHandler builds a statistics handler instance.
func NewStatisticsHandler(statistics service.StatisticsService, logger zerolog.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		statistics: statistics,
		logger:     logger.With().Str("component", "statistics_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *StatisticsHandler) Register(router fiber.Router) {
	router.Get("/forms/:formId", h.formStatistics)
	router.Get("/users/:userId", h.userStatistics)
	router.Get("/trends/:year", h.yearlyTrends)
}

func (h *StatisticsHandler) formStatistics(c *fiber.Ctx) error {
	formID, err := parseUintParam(c, "formId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.statistics.FormStatistics(c.Context(), formID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "form statistics retrieved", stats)
}

func (h *StatisticsHandler) userStatistics(c *fiber.Ctx) error {
	userID := c.Params("userId")

	stats, err := h.statistics.UserStatistics(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "user statistics retrieved", stats)
}

func (h *StatisticsHandler) yearlyTrends(c *fiber.Ctx) error {
	year := c.Params("year")

	trends, err := h.statistics.YearlyTrends(c.Context(), year)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "yearly trends retrieved", trends)
}
