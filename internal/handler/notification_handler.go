package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// NotificationHandler manages notification endpoints for the signed-in user.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewNotificationHandler builds a notification handler instance.
func NewNotificationHandler(notifications service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Post("/:id/read", h.markRead)
	router.Post("/reminders/:instanceId", h.sendReminder)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	limit := parseQueryInt(c, "limit", 50)
	offset := parseQueryInt(c, "offset", 0)

	notifications, err := h.notifications.List(c.Context(), personIDFromContext(c), limit, offset)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "notifications retrieved", notifications)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.notifications.UnreadCount(c.Context(), personIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "unread count retrieved", fiber.Map{"count": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.notifications.MarkRead(c.Context(), id, personIDFromContext(c)); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "notification marked read", nil)
}

func (h *NotificationHandler) sendReminder(c *fiber.Ctx) error {
	instanceID, err := parseUintParam(c, "instanceId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.notifications.SendReminder(c.Context(), instanceID); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "reminder sent", nil)
}
