package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// InstanceHandler manages submission instance endpoints, including the
// workflow transitions.
type InstanceHandler struct {
	instances  service.InstanceService
	validation service.ValidationService
	logger     zerolog.Logger
}

// NewInstanceHandler builds an instance handler instance.
func NewInstanceHandler(instances service.InstanceService, validation service.ValidationService, logger zerolog.Logger) *InstanceHandler {
	return &InstanceHandler{
		instances:  instances,
		validation: validation,
		logger:     logger.With().Str("component", "instance_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *InstanceHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Get("/:id/validate", h.validate)
	router.Put("/:id/values/:fieldId", h.saveValue)

	router.Post("/:id/submit", h.submit)
	router.Post("/:id/review", h.markUnderReview)
	router.Post("/:id/approve", h.approve)
	router.Post("/:id/reject", h.reject)
	router.Post("/:id/return", h.returnForRevision)
	router.Post("/:id/appeal", h.appeal)
}

func (h *InstanceHandler) list(c *fiber.Ctx) error {
	if userID := c.Query("user_id"); userID != "" {
		instances, err := h.instances.ListByUser(c.Context(), userID)
		if err != nil {
			return handleServiceError(c, h.logger, err)
		}
		return utils.SendSuccess(c, "instances retrieved", instances)
	}

	if stage := c.Query("stage"); stage != "" {
		instances, err := h.instances.ListByStage(c.Context(), models.Stage(stage))
		if err != nil {
			return handleServiceError(c, h.logger, err)
		}
		return utils.SendSuccess(c, "instances retrieved", instances)
	}

	formID := parseQueryInt(c, "form_id", 0)
	if formID <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "one of user_id, stage or form_id is required")
	}

	instances, err := h.instances.ListByForm(c.Context(), uint(formID))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "instances retrieved", instances)
}

func (h *InstanceHandler) create(c *fiber.Ctx) error {
	var payload dto.InstanceCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.UserID == "" {
		payload.UserID = personIDFromContext(c)
	}

	instance, err := h.instances.Create(c.Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "instance created", instance)
}

func (h *InstanceHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	instance, err := h.instances.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "instance retrieved", instance)
}

func (h *InstanceHandler) validate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.validation.ValidateContent(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "instance content validated", report)
}

type fieldValuePayload struct {
	Value string `json:"value"`
}

func (h *InstanceHandler) saveValue(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	fieldID, err := parseUintParam(c, "fieldId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload fieldValuePayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.instances.SaveFieldValue(c.Context(), id, fieldID, payload.Value); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "field value saved", nil)
}

func (h *InstanceHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InstanceSubmitRequest
	if err := c.BodyParser(&payload); err != nil && len(c.Body()) > 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.instances.Submit(c.Context(), id, payload, personIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "instance submitted", result)
}

func (h *InstanceHandler) markUnderReview(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InstanceReviewRequest
	if err := c.BodyParser(&payload); err != nil && len(c.Body()) > 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.instances.MarkUnderReview(c.Context(), id, payload, personIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "instance marked under review", result)
}

func (h *InstanceHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InstanceApproveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.instances.Approve(c.Context(), id, payload, personIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "instance approved", result)
}

func (h *InstanceHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InstanceRejectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.instances.Reject(c.Context(), id, payload, personIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "instance rejected", result)
}

func (h *InstanceHandler) returnForRevision(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InstanceReturnRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.instances.ReturnForRevision(c.Context(), id, payload, personIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "instance returned for revision", result)
}

func (h *InstanceHandler) appeal(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InstanceAppealRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.instances.Appeal(c.Context(), id, payload, personIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "instance appealed", result)
}
