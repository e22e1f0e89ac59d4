package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/middleware"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func personIDFromContext(c *fiber.Ctx) string {
	return middleware.PersonID(c)
}

// validationFailedPayload is the response body for a failed validator run,
// carrying the full issue list.
type validationFailedPayload struct {
	Issues []dto.ValidationIssue `json:"issues"`
}

// handleServiceError maps service-layer errors onto HTTP responses. The
// mapping is shared by every handler so equivalent failures look the same
// across the API.
func handleServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var invalidState *service.InvalidStateError
	var validationFailed *service.ValidationFailedError
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrFormNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrFieldNotFound),
		errors.Is(err, service.ErrOptionNotFound),
		errors.Is(err, service.ErrInstanceNotFound),
		errors.Is(err, service.ErrPermissionNotFound),
		errors.Is(err, service.ErrPersonNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &invalidState):
		return utils.SendError(c, fiber.StatusConflict, invalidState.Error())
	case errors.Is(err, service.ErrDuplicateInstance),
		errors.Is(err, service.ErrFormPublished),
		errors.Is(err, repository.ErrStageConflict):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &validationFailed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(utils.APIResponse{
			Success: false,
			Message: validationFailed.Error(),
			Data:    validationFailedPayload{Issues: validationFailed.Issues},
		})
	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
