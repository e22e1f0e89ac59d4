package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// FormHandler manages form definition endpoints.
type FormHandler struct {
	forms      service.FormService
	validation service.ValidationService
	logger     zerolog.Logger
}

// NewFormHandler builds a form handler instance.
func NewFormHandler(forms service.FormService, validation service.ValidationService, logger zerolog.Logger) *FormHandler {
	return &FormHandler{
		forms:      forms,
		validation: validation,
		logger:     logger.With().Str("component", "form_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *FormHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Post("/:id/publish", h.publish)
	router.Get("/:id/structure", h.structure)
	router.Get("/:id/validate", h.validate)
}

func (h *FormHandler) list(c *fiber.Ctx) error {
	filter := dto.FormFilter{
		ActiveOnly:    c.QueryBool("active_only"),
		PublishedOnly: c.QueryBool("published_only"),
	}
	if year := c.Query("academic_year"); year != "" {
		filter.AcademicYear = &year
	}

	forms, err := h.forms.List(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "forms retrieved", forms)
}

func (h *FormHandler) create(c *fiber.Ctx) error {
	var payload dto.FormCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.CreatedBy == "" {
		payload.CreatedBy = personIDFromContext(c)
	}

	form, err := h.forms.Create(c.Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "form created", form)
}

func (h *FormHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	form, err := h.forms.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "form retrieved", form)
}

func (h *FormHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FormUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.LastModifiedBy == "" {
		payload.LastModifiedBy = personIDFromContext(c)
	}

	form, err := h.forms.Update(c.Context(), id, payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "form updated", form)
}

func (h *FormHandler) publish(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	form, err := h.forms.Publish(c.Context(), id, personIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "form published", form)
}

func (h *FormHandler) structure(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tree, err := h.forms.GetStructure(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "form structure retrieved", tree)
}

func (h *FormHandler) validate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.validation.ValidateStructure(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "form structure validated", report)
}
