package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
	"github.com/excellence-hub/excellence-forms-api/internal/utils"
)

// AuthHandler manages authentication endpoints.
type AuthHandler struct {
	auth   service.AuthService
	logger zerolog.Logger
}

// NewAuthHandler builds an auth handler instance.
func NewAuthHandler(auth service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	token, err := h.auth.Login(c.Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "login succeeded", token)
}
