package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	audit  service.AuditService
	logger zerolog.Logger
}

// NewAuditHandler builds an audit handler instance.
func NewAuditHandler(audit service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:entityType/:entityId", h.listByEntity)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	payload := dto.AuditListRequest{
		EntityType: c.Query("entity_type"),
		ActorID:    c.Query("actor_id"),
		Action:     c.Query("action"),
		Page:       parseQueryInt(c, "page", 1),
		Limit:      parseQueryInt(c, "limit", 50),
	}

	entries, err := h.audit.List(c.Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "audit entries retrieved", entries)
}

func (h *AuditHandler) listByEntity(c *fiber.Ctx) error {
	entityID, err := parseUintParam(c, "entityId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.audit.ListByEntity(c.Context(), c.Params("entityType"), entityID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "audit entries retrieved", entries)
}
