package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// PermissionHandler manages section permission endpoints.
type PermissionHandler struct {
	permissions service.PermissionService
	logger      zerolog.Logger
}

// NewPermissionHandler builds a permission handler instance.
func NewPermissionHandler(permissions service.PermissionService, logger zerolog.Logger) *PermissionHandler {
	return &PermissionHandler{
		permissions: permissions,
		logger:      logger.With().Str("component", "permission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *PermissionHandler) Register(router fiber.Router) {
	router.Get("/sections/:sectionId", h.listBySection)
	router.Get("/sections/:sectionId/resolve", h.resolve)
	router.Post("", h.assign)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *PermissionHandler) listBySection(c *fiber.Ctx) error {
	sectionID, err := parseUintParam(c, "sectionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	permissions, err := h.permissions.ListBySection(c.Context(), sectionID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "permissions retrieved", permissions)
}

func (h *PermissionHandler) resolve(c *fiber.Ctx) error {
	sectionID, err := parseUintParam(c, "sectionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	personID := c.Query("person_id")
	if personID == "" {
		personID = personIDFromContext(c)
	}

	rights, err := h.permissions.Resolve(c.Context(), sectionID, personID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "rights resolved", rights)
}

func (h *PermissionHandler) assign(c *fiber.Ctx) error {
	var payload dto.PermissionAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	permission, err := h.permissions.Assign(c.Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "permission assigned", permission)
}

func (h *PermissionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PermissionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	permission, err := h.permissions.Update(c.Context(), id, payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "permission updated", permission)
}

func (h *PermissionHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.permissions.Remove(c.Context(), id); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "permission removed", nil)
}
