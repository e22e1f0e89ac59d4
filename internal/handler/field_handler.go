package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// FieldHandler manages field and option structure endpoints.
type FieldHandler struct {
	forms  service.FormService
	logger zerolog.Logger
}

// NewFieldHandler builds a field handler instance.
func NewFieldHandler(forms service.FormService, logger zerolog.Logger) *FieldHandler {
	return &FieldHandler{
		forms:  forms,
		logger: logger.With().Str("component", "field_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *FieldHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
	router.Post("/options", h.createOption)
	router.Patch("/options/:id", h.updateOption)
	router.Delete("/options/:id", h.removeOption)
}

func (h *FieldHandler) create(c *fiber.Ctx) error {
	var payload dto.FieldCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	field, err := h.forms.AddField(c.Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "field created", field)
}

func (h *FieldHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FieldUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	field, err := h.forms.UpdateField(c.Context(), id, payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "field updated", field)
}

func (h *FieldHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.forms.DeleteField(c.Context(), id); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "field deleted", nil)
}

func (h *FieldHandler) createOption(c *fiber.Ctx) error {
	var payload dto.OptionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	option, err := h.forms.AddOption(c.Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "option created", option)
}

func (h *FieldHandler) updateOption(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.OptionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	option, err := h.forms.UpdateOption(c.Context(), id, payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "option updated", option)
}

func (h *FieldHandler) removeOption(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.forms.DeleteOption(c.Context(), id); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "option deleted", nil)
}
