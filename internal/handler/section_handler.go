package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// SectionHandler manages section structure endpoints.
type SectionHandler struct {
	forms  service.FormService
	logger zerolog.Logger
}

// NewSectionHandler builds a section handler instance.
func NewSectionHandler(forms service.FormService, logger zerolog.Logger) *SectionHandler {
	return &SectionHandler{
		forms:  forms,
		logger: logger.With().Str("component", "section_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SectionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *SectionHandler) create(c *fiber.Ctx) error {
	var payload dto.SectionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	section, err := h.forms.AddSection(c.Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "section created", section)
}

func (h *SectionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SectionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	section, err := h.forms.UpdateSection(c.Context(), id, payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "section updated", section)
}

func (h *SectionHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.forms.DeleteSection(c.Context(), id); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "section deleted", nil)
}
